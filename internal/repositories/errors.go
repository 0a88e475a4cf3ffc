package repositories

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned by compare-and-swap writes when the
	// record's version changed since the caller read it: another writer
	// won the race. Callers retry by re-reading fresh state.
	ErrVersionConflict = errors.New("version conflict")
)
