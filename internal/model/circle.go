package model

import "time"

// Circle is a family circle: one care recipient plus their family and
// caregivers. It scopes every other entity; no two circles share data.
type Circle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
