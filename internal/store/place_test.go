package store

import (
	"errors"
	"testing"

	"github.com/mwhitfield/carecircle/internal/geo"
	"github.com/mwhitfield/carecircle/internal/model"
)

func coord(lat, lon float64) geo.Coordinate {
	return geo.Coordinate{Lat: lat, Lon: lon}
}

func TestPlaceCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCircleStore(db)
	ps := NewPlaceStore(db)

	c, err := cs.Create("Hendersons")
	if err != nil {
		t.Fatalf("create circle: %v", err)
	}

	p, err := ps.Create(c.ID, "Eleanor Home", coord(40.0, -73.0), 100)
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	if p.Name != "Eleanor Home" || p.RadiusMetres != 100 {
		t.Errorf("place = %+v", p)
	}

	got, err := ps.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get place: %v", err)
	}
	if got == nil || got.Lat != 40.0 || got.Lon != -73.0 {
		t.Errorf("got = %+v", got)
	}
}

func TestPlaceDefaultRadius(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCircleStore(db)
	ps := NewPlaceStore(db)

	c, _ := cs.Create("Hendersons")
	p, err := ps.Create(c.ID, "Home", coord(40.0, -73.0), 0)
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	if p.RadiusMetres != model.DefaultPlaceRadiusMetres {
		t.Errorf("radius = %v, want default %v", p.RadiusMetres, model.DefaultPlaceRadiusMetres)
	}
}

func TestPlaceListInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCircleStore(db)
	ps := NewPlaceStore(db)

	c, _ := cs.Create("Hendersons")
	// Names deliberately out of alphabetical order: the registry must
	// preserve insertion order for the matcher's tie-break.
	names := []string{"Zoo", "Home", "Park", "Clinic"}
	for _, name := range names {
		if _, err := ps.Create(c.ID, name, coord(40.0, -73.0), 100); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	places, err := ps.ListByCircle(c.ID)
	if err != nil {
		t.Fatalf("list places: %v", err)
	}
	if len(places) != len(names) {
		t.Fatalf("len = %d, want %d", len(places), len(names))
	}
	for i, name := range names {
		if places[i].Name != name {
			t.Errorf("places[%d] = %q, want %q (insertion order)", i, places[i].Name, name)
		}
	}
}

func TestPlaceValidation(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCircleStore(db)
	ps := NewPlaceStore(db)

	c, _ := cs.Create("Hendersons")

	if _, err := ps.Create(c.ID, "Bad", coord(200, 0), 100); !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Errorf("invalid center: err = %v, want ErrInvalidCoordinate", err)
	}
	if _, err := ps.Create(c.ID, "Bad", coord(40, -73), -5); !errors.Is(err, ErrInvalidPlace) {
		t.Errorf("negative radius: err = %v, want ErrInvalidPlace", err)
	}
	if _, err := ps.Create("nope", "Home", coord(40, -73), 100); !errors.Is(err, ErrUnknownCircle) {
		t.Errorf("unknown circle: err = %v, want ErrUnknownCircle", err)
	}
}

func TestPlaceOverlapIsLegal(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCircleStore(db)
	ps := NewPlaceStore(db)

	c, _ := cs.Create("Hendersons")
	if _, err := ps.Create(c.ID, "Home", coord(40.0, -73.0), 500); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ps.Create(c.ID, "Next Door", coord(40.0001, -73.0), 500); err != nil {
		t.Errorf("overlapping geofences must be accepted: %v", err)
	}
}

func TestPlaceUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCircleStore(db)
	ps := NewPlaceStore(db)

	c, _ := cs.Create("Hendersons")
	p, _ := ps.Create(c.ID, "Home", coord(40.0, -73.0), 100)

	updated, err := ps.Update(p.ID, "Eleanor's House", coord(40.001, -73.0), 250)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Eleanor's House" || updated.RadiusMetres != 250 {
		t.Errorf("updated = %+v", updated)
	}

	if err := ps.Delete(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := ps.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
