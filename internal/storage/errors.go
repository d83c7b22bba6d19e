package storage

import (
	"errors"
	"strings"
)

var (
	// ErrConflict marks a unique-key violation, e.g. a duplicate username.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an operation targeting a row that is absent or not
	// owned by the caller.
	ErrNotFound = errors.New("not found")
)

// isConstraintErr reports whether err is a SQLite constraint violation.
// modernc.org/sqlite surfaces these as plain errors carrying the standard
// "constraint failed" text and extended result codes.
func isConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "constraint failed") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "FOREIGN KEY constraint")
}
