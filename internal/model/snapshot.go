package model

import "time"

// Snapshot statuses.
const (
	SnapshotStatusPending   = "pending"
	SnapshotStatusUploading = "uploading"
	SnapshotStatusCompleted = "completed"
	SnapshotStatusFailed    = "failed"
)

// Snapshot records one encrypted offsite copy of the database.
type Snapshot struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	S3Key     string    `json:"s3_key"`
	Status    string    `json:"status"`
	SizeBytes int64     `json:"size_bytes"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
