package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mwhitfield/carecircle/internal/geo"
	"github.com/mwhitfield/carecircle/internal/model"
)

// CheckinStore is the append-only log of reported positions. Rows are never
// updated or deleted here; retention is someone else's problem.
type CheckinStore struct {
	db *sql.DB
}

func NewCheckinStore(db *sql.DB) *CheckinStore {
	return &CheckinStore{db: db}
}

// Append validates and records one check-in. The timestamp is assigned
// server-side so independent devices cannot skew ordering with their own
// clocks. A single INSERT makes the write atomic: on any failure, including
// a caller timeout before this point, nothing is recorded.
func (s *CheckinStore) Append(circleID, memberID string, coord geo.Coordinate, placeLabel, notes *string) (*model.Checkin, error) {
	if err := coord.Validate(); err != nil {
		return nil, err
	}

	var exists int
	err := s.db.QueryRow("SELECT 1 FROM family_circles WHERE id = ?", circleID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrUnknownCircle
	}
	if err != nil {
		return nil, fmt.Errorf("check family circle: %w", classify(err))
	}

	err = s.db.QueryRow(
		"SELECT 1 FROM members WHERE id = ? AND family_circle_id = ?",
		memberID, circleID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrUnknownMember
	}
	if err != nil {
		return nil, fmt.Errorf("check member: %w", classify(err))
	}

	return s.append(circleID, memberID, time.Now().UTC(), coord, placeLabel, notes)
}

func (s *CheckinStore) append(circleID, memberID string, ts time.Time, coord geo.Coordinate, placeLabel, notes *string) (*model.Checkin, error) {
	result, err := s.db.Exec(
		"INSERT INTO checkins (family_circle_id, member_id, timestamp, lat, lon, place_label, notes) VALUES (?, ?, ?, ?, ?, ?, ?)",
		circleID, memberID, ts, coord.Lat, coord.Lon, placeLabel, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert checkin: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CheckinStore) GetByID(id int64) (*model.Checkin, error) {
	var c model.Checkin
	var label, notes sql.NullString
	err := s.db.QueryRow(
		"SELECT id, family_circle_id, member_id, timestamp, lat, lon, place_label, notes FROM checkins WHERE id = ?",
		id,
	).Scan(&c.ID, &c.CircleID, &c.MemberID, &c.Timestamp, &c.Lat, &c.Lon, &label, &notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query checkin: %w", classify(err))
	}
	if label.Valid {
		c.PlaceLabel = &label.String
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	return &c, nil
}

// AllFor returns every check-in recorded for the circle, oldest row first.
func (s *CheckinStore) AllFor(circleID string) ([]model.Checkin, error) {
	rows, err := s.db.Query(
		"SELECT id, family_circle_id, member_id, timestamp, lat, lon, place_label, notes FROM checkins WHERE family_circle_id = ? ORDER BY id",
		circleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query checkins: %w", classify(err))
	}
	defer rows.Close()

	var checkins []model.Checkin
	for rows.Next() {
		var c model.Checkin
		var label, notes sql.NullString
		if err := rows.Scan(&c.ID, &c.CircleID, &c.MemberID, &c.Timestamp, &c.Lat, &c.Lon, &label, &notes); err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		if label.Valid {
			c.PlaceLabel = &label.String
		}
		if notes.Valid {
			c.Notes = &notes.String
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

// CountFor returns the number of check-ins recorded for the circle.
func (s *CheckinStore) CountFor(circleID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM checkins WHERE family_circle_id = ?", circleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count checkins: %w", classify(err))
	}
	return n, nil
}
