package store

import (
	"errors"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrUnknownCircle is returned when a family circle id is not recognized.
var ErrUnknownCircle = errors.New("unknown family circle")

// ErrUnknownMember is returned when a member id does not belong to the circle.
var ErrUnknownMember = errors.New("unknown member")

// ErrStorageUnavailable wraps transient SQLite failures (busy/locked).
// Callers retry with backoff; the failed operation was never partially applied.
var ErrStorageUnavailable = errors.New("storage temporarily unavailable")

// classify maps driver-level transient errors onto ErrStorageUnavailable so
// handlers can distinguish "retry later" from real failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return errors.Join(ErrStorageUnavailable, err)
		}
	}
	return err
}
