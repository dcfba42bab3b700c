package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwhitfield/carecircle/internal/geo"
	"github.com/mwhitfield/carecircle/internal/model"
)

// ErrInvalidPlace is returned when a place has a non-positive radius or an
// invalid center coordinate.
var ErrInvalidPlace = errors.New("invalid place")

// PlaceStore manages named places. ListByCircle returns insertion order so
// the matcher's registry-order tie-break is deterministic; the matching core
// re-fetches on every resolution rather than caching, so caregiver edits are
// visible on the next read.
type PlaceStore struct {
	db *sql.DB
}

func NewPlaceStore(db *sql.DB) *PlaceStore {
	return &PlaceStore{db: db}
}

func validatePlace(center geo.Coordinate, radiusMetres float64) error {
	if err := center.Validate(); err != nil {
		return err
	}
	if radiusMetres <= 0 {
		return fmt.Errorf("%w: radius must be positive", ErrInvalidPlace)
	}
	return nil
}

func (s *PlaceStore) Create(circleID, name string, center geo.Coordinate, radiusMetres float64) (*model.Place, error) {
	if radiusMetres == 0 {
		radiusMetres = model.DefaultPlaceRadiusMetres
	}
	if err := validatePlace(center, radiusMetres); err != nil {
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

	result, err := s.db.Exec(
		"INSERT INTO named_places (family_circle_id, name, lat, lon, radius_metres) VALUES (?, ?, ?, ?, ?)",
		circleID, name, center.Lat, center.Lon, radiusMetres,
	)
	if err != nil {
		return nil, fmt.Errorf("insert place: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlaceStore) GetByID(id int64) (*model.Place, error) {
	var p model.Place
	err := s.db.QueryRow(
		"SELECT id, family_circle_id, name, lat, lon, radius_metres, created_at, updated_at FROM named_places WHERE id = ?",
		id,
	).Scan(&p.ID, &p.CircleID, &p.Name, &p.Lat, &p.Lon, &p.RadiusMetres, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query place: %w", classify(err))
	}
	return &p, nil
}

// ListByCircle returns every place in the circle in insertion order (ids are
// monotonic, so ORDER BY id is registry order).
func (s *PlaceStore) ListByCircle(circleID string) ([]model.Place, error) {
	rows, err := s.db.Query(
		"SELECT id, family_circle_id, name, lat, lon, radius_metres, created_at, updated_at FROM named_places WHERE family_circle_id = ? ORDER BY id",
		circleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", classify(err))
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.ID, &p.CircleID, &p.Name, &p.Lat, &p.Lon, &p.RadiusMetres, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

func (s *PlaceStore) Update(id int64, name string, center geo.Coordinate, radiusMetres float64) (*model.Place, error) {
	if err := validatePlace(center, radiusMetres); err != nil {
		return nil, err
	}
	_, err := s.db.Exec(
		"UPDATE named_places SET name = ?, lat = ?, lon = ?, radius_metres = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, center.Lat, center.Lon, radiusMetres, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update place: %w", classify(err))
	}
	return s.GetByID(id)
}

func (s *PlaceStore) Delete(id int64) error {
	if _, err := s.db.Exec("DELETE FROM named_places WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete place: %w", classify(err))
	}
	return nil
}
