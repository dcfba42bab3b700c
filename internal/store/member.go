package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwhitfield/carecircle/internal/model"
)

// MemberStore manages circle membership. Members are owned by reference:
// deleting a member does not touch their historical check-ins.
type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

func (s *MemberStore) Create(circleID, displayName string) (*model.Member, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM family_circles WHERE id = ?", circleID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrUnknownCircle
	}
	if err != nil {
		return nil, fmt.Errorf("check family circle: %w", classify(err))
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		"INSERT INTO members (id, family_circle_id, display_name) VALUES (?, ?, ?)",
		id, circleID, displayName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", classify(err))
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id string) (*model.Member, error) {
	var m model.Member
	err := s.db.QueryRow(
		"SELECT id, family_circle_id, display_name, created_at FROM members WHERE id = ?",
		id,
	).Scan(&m.ID, &m.CircleID, &m.DisplayName, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", classify(err))
	}
	return &m, nil
}

func (s *MemberStore) ListByCircle(circleID string) ([]model.Member, error) {
	rows, err := s.db.Query(
		"SELECT id, family_circle_id, display_name, created_at FROM members WHERE family_circle_id = ? ORDER BY display_name",
		circleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", classify(err))
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.CircleID, &m.DisplayName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *MemberStore) Update(id, displayName string) (*model.Member, error) {
	_, err := s.db.Exec("UPDATE members SET display_name = ? WHERE id = ?", displayName, id)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", classify(err))
	}
	return s.GetByID(id)
}

func (s *MemberStore) Delete(id string) error {
	if _, err := s.db.Exec("DELETE FROM members WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete member: %w", classify(err))
	}
	return nil
}
