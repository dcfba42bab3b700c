package model

import "time"

// Alert is a caregiver-raised banner for one circle, shown on every
// renderer until cleared. At most one alert is active per circle; raising a
// new one supersedes the previous.
type Alert struct {
	ID        int64      `json:"id"`
	CircleID  string     `json:"family_circle_id"`
	Message   string     `json:"message"`
	SetBy     string     `json:"set_by"`
	SetAt     time.Time  `json:"set_at"`
	ClearedAt *time.Time `json:"cleared_at,omitempty"`
}
