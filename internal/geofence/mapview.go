package geofence

import (
	"fmt"
	"sort"
	"time"

	"github.com/mwhitfield/carecircle/internal/model"
)

// AlertSource supplies the circle's active caregiver alert, if any.
type AlertSource interface {
	Active(circleID string) (*model.Alert, error)
}

// PositionView is one member's row in the composed map view, shaped for
// direct rendering. Matched fields are nil when the member is outside every
// place; renderers then show raw coordinates or the stored label.
type PositionView struct {
	MemberID         string    `json:"member_id"`
	MemberName       string    `json:"member_name"`
	Lat              float64   `json:"lat"`
	Lon              float64   `json:"lon"`
	Timestamp        time.Time `json:"timestamp"`
	MatchedPlaceID   *int64    `json:"matched_place_id"`
	MatchedPlaceName *string   `json:"matched_place_name"`
	StoredPlaceLabel *string   `json:"stored_place_label,omitempty"`
	LabelDivergent   bool      `json:"label_divergent,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
}

// MapView is the single composed payload served to both the TV renderer and
// the web map, so their displayed state cannot diverge except by refresh
// timing.
type MapView struct {
	Places    []model.Place  `json:"places"`
	Positions []PositionView `json:"positions"`
	Alert     *model.Alert   `json:"alert,omitempty"`
}

// Assembler composes the map view from the registry, the resolver, and the
// alert state. It performs no matching of its own.
type Assembler struct {
	places   PlaceSource
	resolver *Resolver
	alerts   AlertSource
}

func NewAssembler(places PlaceSource, resolver *Resolver, alerts AlertSource) *Assembler {
	return &Assembler{places: places, resolver: resolver, alerts: alerts}
}

// Assemble builds the map view for one circle. Positions are ordered newest
// check-in first, ties by highest id, so repeated calls over unchanged data
// render identically.
func (a *Assembler) Assemble(circleID string) (*MapView, error) {
	places, err := a.places.ListByCircle(circleID)
	if err != nil {
		return nil, fmt.Errorf("load places: %w", err)
	}

	latest, err := a.resolver.LatestFor(circleID)
	if err != nil {
		return nil, err
	}

	alert, err := a.alerts.Active(circleID)
	if err != nil {
		return nil, fmt.Errorf("load alert: %w", err)
	}

	positions := make([]PositionView, 0, len(latest))
	for _, lp := range latest {
		positions = append(positions, toPositionView(lp))
	}
	sort.Slice(positions, func(i, j int) bool {
		if !positions[i].Timestamp.Equal(positions[j].Timestamp) {
			return positions[i].Timestamp.After(positions[j].Timestamp)
		}
		return positions[i].MemberID > positions[j].MemberID
	})

	if places == nil {
		places = []model.Place{}
	}
	return &MapView{Places: places, Positions: positions, Alert: alert}, nil
}

func toPositionView(lp LatestPosition) PositionView {
	pv := PositionView{
		MemberID:         lp.Checkin.MemberID,
		MemberName:       lp.MemberName,
		Lat:              lp.Checkin.Lat,
		Lon:              lp.Checkin.Lon,
		Timestamp:        lp.Checkin.Timestamp,
		StoredPlaceLabel: lp.StoredLabel,
		LabelDivergent:   lp.LabelDivergent,
		Notes:            lp.Checkin.Notes,
	}
	if lp.Match.Matched() {
		pv.MatchedPlaceID = &lp.Match.Place.ID
		pv.MatchedPlaceName = &lp.Match.Place.Name
	}
	return pv
}
