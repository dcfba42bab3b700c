package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwhitfield/carecircle/internal/model"
)

// CircleStore manages family circles. Circle ids are opaque strings minted
// here; once a circle is in use its id never changes.
type CircleStore struct {
	db *sql.DB
}

func NewCircleStore(db *sql.DB) *CircleStore {
	return &CircleStore{db: db}
}

func (s *CircleStore) Create(name string) (*model.Circle, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO family_circles (id, name) VALUES (?, ?)",
		id, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family circle: %w", classify(err))
	}
	return s.GetByID(id)
}

func (s *CircleStore) GetByID(id string) (*model.Circle, error) {
	var c model.Circle
	err := s.db.QueryRow(
		"SELECT id, name, created_at FROM family_circles WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query family circle: %w", classify(err))
	}
	return &c, nil
}

// Exists reports whether the circle id is known. Used by write paths to
// reject unknown circles before touching other tables.
func (s *CircleStore) Exists(id string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM family_circles WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check family circle: %w", classify(err))
	}
	return true, nil
}
