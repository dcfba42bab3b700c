package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mwhitfield/carecircle/internal/model"
)

// AlertStore manages the per-circle caregiver alert. The lifecycle is
// explicit: Set raises (superseding any active alert), Clear lowers, Active
// reads. Cleared alerts stay in the table as history.
type AlertStore struct {
	db *sql.DB
}

func NewAlertStore(db *sql.DB) *AlertStore {
	return &AlertStore{db: db}
}

// Set raises an alert for the circle. Any previously active alert for the
// same circle is cleared in the same transaction, so readers never observe
// two active alerts.
func (s *AlertStore) Set(circleID, message, setBy string) (*model.Alert, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM family_circles WHERE id = ?", circleID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrUnknownCircle
	}
	if err != nil {
		return nil, fmt.Errorf("check family circle: %w", classify(err))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", classify(err))
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.Exec(
		"UPDATE alerts SET cleared_at = ? WHERE family_circle_id = ? AND cleared_at IS NULL",
		now, circleID,
	); err != nil {
		return nil, fmt.Errorf("supersede alert: %w", classify(err))
	}

	result, err := tx.Exec(
		"INSERT INTO alerts (family_circle_id, message, set_by, set_at) VALUES (?, ?, ?, ?)",
		circleID, message, setBy, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert alert: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit alert: %w", classify(err))
	}
	return s.GetByID(id)
}

// Clear lowers the active alert, if any. Clearing with no active alert is
// not an error.
func (s *AlertStore) Clear(circleID string) error {
	_, err := s.db.Exec(
		"UPDATE alerts SET cleared_at = ? WHERE family_circle_id = ? AND cleared_at IS NULL",
		time.Now().UTC(), circleID,
	)
	if err != nil {
		return fmt.Errorf("clear alert: %w", classify(err))
	}
	return nil
}

// Active returns the circle's active alert, or nil when none is raised.
func (s *AlertStore) Active(circleID string) (*model.Alert, error) {
	var a model.Alert
	err := s.db.QueryRow(
		"SELECT id, family_circle_id, message, set_by, set_at FROM alerts WHERE family_circle_id = ? AND cleared_at IS NULL ORDER BY id DESC LIMIT 1",
		circleID,
	).Scan(&a.ID, &a.CircleID, &a.Message, &a.SetBy, &a.SetAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query alert: %w", classify(err))
	}
	return &a, nil
}

func (s *AlertStore) GetByID(id int64) (*model.Alert, error) {
	var a model.Alert
	var cleared sql.NullTime
	err := s.db.QueryRow(
		"SELECT id, family_circle_id, message, set_by, set_at, cleared_at FROM alerts WHERE id = ?",
		id,
	).Scan(&a.ID, &a.CircleID, &a.Message, &a.SetBy, &a.SetAt, &cleared)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query alert: %w", classify(err))
	}
	if cleared.Valid {
		a.ClearedAt = &cleared.Time
	}
	return &a, nil
}
