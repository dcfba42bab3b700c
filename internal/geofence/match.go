// Package geofence resolves raw GPS coordinates to caregiver-named places.
//
// The matching rules here are frozen: every renderer that recomputes a match
// independently (the TV display recomputes from polled data, the web map
// from its own copy) must reach the same decision for the same inputs.
// Changing the formula, the inclusive boundary, or the tie-break order is a
// breaking change for all of them at once.
package geofence

import (
	"math"

	"github.com/mwhitfield/carecircle/internal/geo"
	"github.com/mwhitfield/carecircle/internal/model"
)

// matchEpsilon is the slack, in metres, within which two center distances
// are considered equal for tie-breaking.
const matchEpsilon = 1e-6

// MatchResult is the outcome of matching one coordinate against one
// circle's places. Place is nil when unmatched; DistanceMetres is then the
// distance to the nearest place center, or NaN when the circle has no
// places at all.
type MatchResult struct {
	Place          *model.Place
	DistanceMetres float64
}

// Matched reports whether a place contained the coordinate.
func (r MatchResult) Matched() bool {
	return r.Place != nil
}

// Match resolves the best-matching place for a coordinate.
//
// A place is a candidate when the distance from the coordinate to its
// center is at most its radius — the boundary is inclusive, so a point
// exactly radius metres out still matches. Among candidates the smallest
// center distance wins; distances equal within matchEpsilon fall back to
// registry order, first-defined place first. The places slice must be in
// registry (insertion) order.
func Match(c geo.Coordinate, places []model.Place) (MatchResult, error) {
	if err := c.Validate(); err != nil {
		return MatchResult{}, err
	}

	result := MatchResult{DistanceMetres: math.NaN()}
	nearest := math.Inf(1)

	for i := range places {
		d, err := geo.DistanceMetres(c, geo.Coordinate{Lat: places[i].Lat, Lon: places[i].Lon})
		if err != nil {
			// Registry invariants make place centers valid; a bad row is
			// skipped rather than poisoning the whole resolution.
			continue
		}
		if d < nearest {
			nearest = d
		}
		if d > places[i].RadiusMetres {
			continue
		}
		if result.Place == nil || d < result.DistanceMetres-matchEpsilon {
			result = MatchResult{Place: &places[i], DistanceMetres: d}
		}
	}

	if result.Place == nil && len(places) > 0 {
		result.DistanceMetres = nearest
	}
	return result, nil
}
