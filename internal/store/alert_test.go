package store

import (
	"errors"
	"testing"
)

func setupAlertTest(t *testing.T) (*AlertStore, string) {
	t.Helper()
	db := setupTestDB(t)
	c, err := NewCircleStore(db).Create("Hendersons")
	if err != nil {
		t.Fatalf("create circle: %v", err)
	}
	return NewAlertStore(db), c.ID
}

func TestAlertLifecycle(t *testing.T) {
	as, circleID := setupAlertTest(t)

	active, err := as.Active(circleID)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no alert, got %+v", active)
	}

	a, err := as.Set(circleID, "Eleanor missed her morning check-in", "sam")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if a.ClearedAt != nil {
		t.Error("new alert must not be cleared")
	}

	active, err = as.Active(circleID)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil || active.ID != a.ID {
		t.Fatalf("active = %+v, want raised alert", active)
	}

	if err := as.Clear(circleID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	active, err = as.Active(circleID)
	if err != nil {
		t.Fatalf("active after clear: %v", err)
	}
	if active != nil {
		t.Errorf("cleared alert still active: %+v", active)
	}

	cleared, err := as.GetByID(a.ID)
	if err != nil {
		t.Fatalf("get cleared: %v", err)
	}
	if cleared == nil || cleared.ClearedAt == nil {
		t.Error("cleared alert should remain as history with cleared_at set")
	}
}

func TestAlertSetSupersedesActive(t *testing.T) {
	as, circleID := setupAlertTest(t)

	first, err := as.Set(circleID, "first", "sam")
	if err != nil {
		t.Fatalf("set first: %v", err)
	}
	second, err := as.Set(circleID, "second", "sam")
	if err != nil {
		t.Fatalf("set second: %v", err)
	}

	active, err := as.Active(circleID)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Fatalf("active = %+v, want the superseding alert", active)
	}

	old, err := as.GetByID(first.ID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if old.ClearedAt == nil {
		t.Error("superseded alert must be cleared")
	}
}

func TestAlertClearWithoutActive(t *testing.T) {
	as, circleID := setupAlertTest(t)
	if err := as.Clear(circleID); err != nil {
		t.Errorf("clear with no active alert should be a no-op, got %v", err)
	}
}

func TestAlertUnknownCircle(t *testing.T) {
	as, _ := setupAlertTest(t)
	_, err := as.Set("nope", "msg", "sam")
	if !errors.Is(err, ErrUnknownCircle) {
		t.Fatalf("err = %v, want ErrUnknownCircle", err)
	}
}
