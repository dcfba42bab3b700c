package geofence

import (
	"fmt"

	"github.com/mwhitfield/carecircle/internal/geo"
	"github.com/mwhitfield/carecircle/internal/model"
)

// CheckinSource supplies the recorded check-ins for a circle.
type CheckinSource interface {
	AllFor(circleID string) ([]model.Checkin, error)
}

// PlaceSource supplies a circle's places in registry order. Implementations
// must re-fetch on every call so caregiver edits are visible on the next
// resolution; the resolver never caches the place set.
type PlaceSource interface {
	ListByCircle(circleID string) ([]model.Place, error)
}

// MemberSource supplies the circle's members for display names.
type MemberSource interface {
	ListByCircle(circleID string) ([]model.Member, error)
}

// LatestPosition is a member's most recent check-in plus its resolved
// match. StoredLabel is the label written at check-in time (absent on older
// rows); Match is the live recomputation. LabelDivergent marks a stored
// label that no longer agrees with the live match — a data-quality warning
// for the caller, never a failure.
type LatestPosition struct {
	Checkin        model.Checkin
	MemberName     string
	Match          MatchResult
	StoredLabel    *string
	LabelDivergent bool
}

// Resolver derives the latest position per member for a circle.
type Resolver struct {
	checkins CheckinSource
	places   PlaceSource
	members  MemberSource
}

func NewResolver(checkins CheckinSource, places PlaceSource, members MemberSource) *Resolver {
	return &Resolver{checkins: checkins, places: places, members: members}
}

// LatestFor returns one LatestPosition per roster member with at least one
// check-in, keyed by member id. Members with no check-ins simply do not
// appear, and neither do check-ins left behind by removed members. The most
// recent check-in wins by timestamp; identical timestamps fall back to the
// highest row id, so the most recently written row wins.
func (r *Resolver) LatestFor(circleID string) (map[string]LatestPosition, error) {
	checkins, err := r.checkins.AllFor(circleID)
	if err != nil {
		return nil, fmt.Errorf("load checkins: %w", err)
	}
	if len(checkins) == 0 {
		return map[string]LatestPosition{}, nil
	}

	places, err := r.places.ListByCircle(circleID)
	if err != nil {
		return nil, fmt.Errorf("load places: %w", err)
	}

	members, err := r.members.ListByCircle(circleID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.DisplayName
	}

	out := make(map[string]LatestPosition)
	for memberID, c := range latestByMember(checkins) {
		name, onRoster := names[memberID]
		if !onRoster {
			// History outlives roster removal, but only current members
			// appear on the map.
			continue
		}
		match, err := Match(geo.Coordinate{Lat: c.Lat, Lon: c.Lon}, places)
		if err != nil {
			return nil, fmt.Errorf("match checkin %d: %w", c.ID, err)
		}
		out[memberID] = LatestPosition{
			Checkin:        c,
			MemberName:     name,
			Match:          match,
			StoredLabel:    c.PlaceLabel,
			LabelDivergent: labelDivergent(c.PlaceLabel, match),
		}
	}
	return out, nil
}

// latestByMember reduces a check-in log to the newest row per member:
// maximum timestamp, ties broken by highest id.
func latestByMember(checkins []model.Checkin) map[string]model.Checkin {
	latest := make(map[string]model.Checkin)
	for _, c := range checkins {
		cur, ok := latest[c.MemberID]
		if !ok || newer(c, cur) {
			latest[c.MemberID] = c
		}
	}
	return latest
}

func newer(a, b model.Checkin) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}

// labelDivergent reports whether a stored label disagrees with the live
// match. An absent stored label is backward-compatible history, not
// divergence.
func labelDivergent(stored *string, match MatchResult) bool {
	if stored == nil {
		return false
	}
	if !match.Matched() {
		return true
	}
	return match.Place.Name != *stored
}
