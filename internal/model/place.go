package model

import "time"

// DefaultPlaceRadiusMetres is used when a caregiver creates a place without
// an explicit radius.
const DefaultPlaceRadiusMetres = 150.0

// Place is a caregiver-defined circular geofence with a human label.
// Places within a circle may overlap; the matcher resolves ambiguity.
type Place struct {
	ID           int64     `json:"id"`
	CircleID     string    `json:"family_circle_id"`
	Name         string    `json:"name"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	RadiusMetres float64   `json:"radius_metres"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
