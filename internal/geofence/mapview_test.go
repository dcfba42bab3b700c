package geofence

import (
	"encoding/json"
	"testing"

	"github.com/mwhitfield/carecircle/internal/model"
)

type fakeAlerts struct{ active *model.Alert }

func (f *fakeAlerts) Active(circleID string) (*model.Alert, error) {
	return f.active, nil
}

func TestAssembleComposesPlacesPositionsAlert(t *testing.T) {
	places := &fakePlaces{rows: []model.Place{homePlace()}}
	resolver := NewResolver(
		&fakeCheckins{rows: []model.Checkin{
			checkin(1, "M1", t10, 40.0, -73.0, strptr("Home")),
			checkin(2, "M2", t20, 41.0, -73.0, nil),
		}},
		places,
		&fakeMembers{rows: []model.Member{
			{ID: "M1", CircleID: "F1", DisplayName: "Eleanor"},
			{ID: "M2", CircleID: "F1", DisplayName: "Sam"},
		}},
	)
	alert := &model.Alert{ID: 1, CircleID: "F1", Message: "Call before visiting", SetBy: "M2", SetAt: t10}

	a := NewAssembler(places, resolver, &fakeAlerts{active: alert})
	view, err := a.Assemble("F1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if len(view.Places) != 1 || view.Places[0].Name != "Home" {
		t.Errorf("places = %+v, want [Home]", view.Places)
	}
	if len(view.Positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(view.Positions))
	}
	// Newest check-in first.
	if view.Positions[0].MemberID != "M2" || view.Positions[1].MemberID != "M1" {
		t.Errorf("position order = [%s %s], want [M2 M1]",
			view.Positions[0].MemberID, view.Positions[1].MemberID)
	}

	m1 := view.Positions[1]
	if m1.MatchedPlaceName == nil || *m1.MatchedPlaceName != "Home" {
		t.Errorf("M1 matched place = %v, want Home", m1.MatchedPlaceName)
	}
	m2 := view.Positions[0]
	if m2.MatchedPlaceID != nil || m2.MatchedPlaceName != nil {
		t.Errorf("M2 should be unmatched, got %v/%v", m2.MatchedPlaceID, m2.MatchedPlaceName)
	}

	if view.Alert == nil || view.Alert.Message != "Call before visiting" {
		t.Errorf("alert = %+v, want active alert", view.Alert)
	}
}

func TestAssembleEmptyCircle(t *testing.T) {
	places := &fakePlaces{}
	resolver := NewResolver(&fakeCheckins{}, places, &fakeMembers{})

	a := NewAssembler(places, resolver, &fakeAlerts{})
	view, err := a.Assemble("F1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	// Renderers iterate these directly; they must serialize as [] not null.
	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Places    []json.RawMessage `json:"places"`
		Positions []json.RawMessage `json:"positions"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Places == nil || decoded.Positions == nil {
		t.Errorf("empty view must serialize arrays, got %s", data)
	}
}

func TestAssembleUnmatchedKeepsRawCoordinates(t *testing.T) {
	places := &fakePlaces{rows: []model.Place{homePlace()}}
	resolver := NewResolver(
		&fakeCheckins{rows: []model.Checkin{checkin(1, "M1", t20, 41.0, -73.0, nil)}},
		places,
		&fakeMembers{rows: m1Roster()},
	)

	a := NewAssembler(places, resolver, &fakeAlerts{})
	view, err := a.Assemble("F1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(view.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(view.Positions))
	}
	p := view.Positions[0]
	if p.MatchedPlaceName != nil {
		t.Errorf("expected unmatched, got %q", *p.MatchedPlaceName)
	}
	if p.Lat != 41.0 || p.Lon != -73.0 {
		t.Errorf("raw coordinates must be present for unmatched rows, got (%v,%v)", p.Lat, p.Lon)
	}
}
