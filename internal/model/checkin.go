package model

import "time"

// Checkin is one reported GPS observation for one member at one instant.
// Rows are append-only: never mutated or deleted once written.
//
// PlaceLabel is the place name resolved at write time. Older rows may lack
// it; readers always recompute the match from Lat/Lon and must treat the
// stored label as advisory.
type Checkin struct {
	ID         int64     `json:"id"`
	CircleID   string    `json:"family_circle_id"`
	MemberID   string    `json:"member_id"`
	Timestamp  time.Time `json:"timestamp"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	PlaceLabel *string   `json:"stored_place_label,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}
