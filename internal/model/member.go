package model

import "time"

// Member is a person who reports check-ins. The circle owns its members by
// reference; member ids come from a broader identity space.
type Member struct {
	ID          string    `json:"id"`
	CircleID    string    `json:"family_circle_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
