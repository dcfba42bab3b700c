// Package snapshot ships encrypted copies of the care database to
// S3-compatible storage. Check-in history is a family's safety record;
// losing the little computer in the hallway closet must not lose it.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/mwhitfield/carecircle/internal/model"
	"github.com/mwhitfield/carecircle/internal/store"
)

// s3Client is the slice of the S3 API the manager uses, as an interface for
// testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds snapshot manager configuration.
type Config struct {
	S3            S3Config
	DBPath        string
	Passphrase    string
	ScheduleHour  int // UTC hour for the daily snapshot
	RetentionDays int
}

// Manager runs scheduled and on-demand encrypted snapshots.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	client s3Client

	db     *sql.DB
	snaps  *store.SnapshotStore
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a snapshot manager. With incomplete S3 credentials or
// no passphrase the manager stays disabled: Start is a no-op and RunNow
// returns an error.
func NewManager(cfg Config, db *sql.DB, snaps *store.SnapshotStore, logger *slog.Logger) *Manager {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	m := &Manager{
		cfg:    cfg,
		db:     db,
		snaps:  snaps,
		logger: logger,
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the manager is configured to run.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the scheduled snapshot loop. Safe to call when disabled.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		return
	}
	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.tick(ctx)
			}
		}
	}()
}

// Stop cancels the schedule loop and waits for it to exit.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) tick(ctx context.Context) {
	now := time.Now().UTC()
	if now.Hour() != m.cfg.ScheduleHour || now.Minute() != 0 {
		return
	}
	if _, err := m.RunNow(ctx); err != nil {
		m.logger.Error("scheduled snapshot failed", "error", err)
		return
	}
	if err := m.prune(ctx); err != nil {
		m.logger.Error("snapshot retention prune failed", "error", err)
	}
}

// RunNow takes a snapshot immediately: checkpoint the WAL, copy the
// database, encrypt the copy, upload it. The upload retries with
// fibonacci backoff since object stores fail transiently.
func (m *Manager) RunNow(ctx context.Context) (int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()
	if client == nil {
		return 0, fmt.Errorf("snapshots not configured: missing S3 credentials or passphrase")
	}

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("carecircle-%s.db.enc", timestamp)
	s3Key := "snapshots/" + filename

	record, err := m.snaps.Create(filename, s3Key)
	if err != nil {
		return 0, fmt.Errorf("create snapshot record: %w", err)
	}

	fail := func(stage string, err error) (int64, error) {
		m.snaps.UpdateStatus(record.ID, model.SnapshotStatusFailed, err.Error())
		return 0, fmt.Errorf("%s: %w", stage, err)
	}

	tmpDir := os.TempDir()
	dbCopy := filepath.Join(tmpDir, fmt.Sprintf("carecircle-snap-%d.db", record.ID))
	encFile := filepath.Join(tmpDir, fmt.Sprintf("carecircle-snap-%d.db.enc", record.ID))
	defer os.Remove(dbCopy)
	defer os.Remove(encFile)

	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fail("wal checkpoint", err)
	}
	if err := copyFile(m.cfg.DBPath, dbCopy); err != nil {
		return fail("copy database", err)
	}
	if err := EncryptFile(dbCopy, encFile, m.cfg.Passphrase); err != nil {
		return fail("encrypt", err)
	}

	if err := m.snaps.UpdateStatus(record.ID, model.SnapshotStatusUploading, ""); err != nil {
		m.logger.Warn("update snapshot status", "error", err)
	}

	var size int64
	backoff := retry.WithMaxRetries(4, retry.NewFibonacci(2*time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		f, err := os.Open(encFile)
		if err != nil {
			return err
		}
		defer f.Close()

		stat, err := f.Stat()
		if err != nil {
			return err
		}
		size = stat.Size()

		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(s3Key),
			Body:          f,
			ContentLength: aws.Int64(size),
		})
		if err != nil {
			m.logger.Warn("snapshot upload attempt failed", "key", s3Key, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	if err := m.snaps.UpdateCompleted(record.ID, size); err != nil {
		return 0, fmt.Errorf("mark snapshot completed: %w", err)
	}
	m.logger.Info("snapshot uploaded", "key", s3Key, "bytes", size)
	return record.ID, nil
}

// Restore downloads a snapshot, decrypts and integrity-checks it, and
// writes it next to the live database as <dbpath>.restored. Swapping the
// file in and restarting is a deliberate manual step.
func (m *Manager) Restore(ctx context.Context, snapshotID int64) (string, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()
	if client == nil {
		return "", fmt.Errorf("snapshots not configured")
	}

	record, err := m.snaps.GetByID(snapshotID)
	if err != nil {
		return "", fmt.Errorf("get snapshot: %w", err)
	}
	if record == nil {
		return "", fmt.Errorf("snapshot not found")
	}

	tmpDir := os.TempDir()
	encFile := filepath.Join(tmpDir, fmt.Sprintf("carecircle-restore-%d.db.enc", snapshotID))
	decFile := filepath.Join(tmpDir, fmt.Sprintf("carecircle-restore-%d.db", snapshotID))
	defer os.Remove(encFile)
	defer os.Remove(decFile)

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return "", fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	if err := writeAll(encFile, result.Body); err != nil {
		return "", fmt.Errorf("write downloaded file: %w", err)
	}
	if err := DecryptFile(encFile, decFile, m.cfg.Passphrase); err != nil {
		return "", fmt.Errorf("decrypt snapshot: %w", err)
	}
	if err := checkIntegrity(decFile); err != nil {
		return "", err
	}

	restored := m.cfg.DBPath + ".restored"
	if err := copyFile(decFile, restored); err != nil {
		return "", fmt.Errorf("write restored database: %w", err)
	}
	m.logger.Info("snapshot restored", "path", restored)
	return restored, nil
}

func (m *Manager) prune(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()
	if client == nil {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -m.cfg.RetentionDays)
	old, err := m.snaps.OlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("list old snapshots: %w", err)
	}

	for _, sn := range old {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(sn.S3Key),
		}); err != nil {
			m.logger.Warn("delete old snapshot object", "key", sn.S3Key, "error", err)
			continue
		}
		if err := m.snaps.Delete(sn.ID); err != nil {
			m.logger.Warn("delete old snapshot record", "id", sn.ID, "error", err)
		}
	}
	return nil
}

func checkIntegrity(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var integrity string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}
	return nil
}
