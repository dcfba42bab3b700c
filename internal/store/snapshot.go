package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mwhitfield/carecircle/internal/model"
)

// SnapshotStore records offsite snapshot attempts and outcomes.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Create(filename, s3Key string) (*model.Snapshot, error) {
	result, err := s.db.Exec(
		"INSERT INTO snapshots (filename, s3_key, status) VALUES (?, ?, ?)",
		filename, s3Key, model.SnapshotStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *SnapshotStore) GetByID(id int64) (*model.Snapshot, error) {
	var sn model.Snapshot
	err := s.db.QueryRow(
		"SELECT id, filename, s3_key, status, size_bytes, error, created_at FROM snapshots WHERE id = ?",
		id,
	).Scan(&sn.ID, &sn.Filename, &sn.S3Key, &sn.Status, &sn.SizeBytes, &sn.Error, &sn.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", classify(err))
	}
	return &sn, nil
}

func (s *SnapshotStore) UpdateStatus(id int64, status, errMsg string) error {
	_, err := s.db.Exec("UPDATE snapshots SET status = ?, error = ? WHERE id = ?", status, errMsg, id)
	if err != nil {
		return fmt.Errorf("update snapshot status: %w", classify(err))
	}
	return nil
}

func (s *SnapshotStore) UpdateCompleted(id, sizeBytes int64) error {
	_, err := s.db.Exec(
		"UPDATE snapshots SET status = ?, size_bytes = ?, error = '' WHERE id = ?",
		model.SnapshotStatusCompleted, sizeBytes, id,
	)
	if err != nil {
		return fmt.Errorf("complete snapshot: %w", classify(err))
	}
	return nil
}

// ListCompleted returns completed snapshots, newest first.
func (s *SnapshotStore) ListCompleted() ([]model.Snapshot, error) {
	rows, err := s.db.Query(
		"SELECT id, filename, s3_key, status, size_bytes, error, created_at FROM snapshots WHERE status = ? ORDER BY id DESC",
		model.SnapshotStatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", classify(err))
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		var sn model.Snapshot
		if err := rows.Scan(&sn.ID, &sn.Filename, &sn.S3Key, &sn.Status, &sn.SizeBytes, &sn.Error, &sn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}

// OlderThan returns completed snapshots created before the cutoff, for
// retention pruning.
func (s *SnapshotStore) OlderThan(cutoff time.Time) ([]model.Snapshot, error) {
	rows, err := s.db.Query(
		"SELECT id, filename, s3_key, status, size_bytes, error, created_at FROM snapshots WHERE status = ? AND datetime(created_at) < datetime(?)",
		model.SnapshotStatusCompleted, cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return nil, fmt.Errorf("query old snapshots: %w", classify(err))
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		var sn model.Snapshot
		if err := rows.Scan(&sn.ID, &sn.Filename, &sn.S3Key, &sn.Status, &sn.SizeBytes, &sn.Error, &sn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}

func (s *SnapshotStore) Delete(id int64) error {
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete snapshot: %w", classify(err))
	}
	return nil
}
