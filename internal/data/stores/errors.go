package stores

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsNotFoundError returns true if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsBusyError returns true if the error is a SQLITE_BUSY error.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_BUSY
	}
	return false
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const (
	busyRetries     = 3
	busyInitialWait = 50 * time.Millisecond
)

// retryBusy runs fn, retrying with backoff while it fails with
// SQLITE_BUSY. Long write transactions can lose the WAL writer lock to a
// concurrent process even with a busy timeout set.
func retryBusy(fn func() error) error {
	wait := busyInitialWait

	var err error
	for i := 0; i < busyRetries; i++ {
		err = fn()
		if !IsBusyError(err) {
			return err
		}
		time.Sleep(wait)
		wait *= 2
	}

	return err
}
