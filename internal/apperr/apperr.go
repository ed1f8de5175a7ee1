// Package apperr defines the recoverable error classes surfaced to the
// user interface. None of these are fatal: every one is local and the
// user can act on it.
package apperr

import "errors"

var (
	// ErrPunchConflict is reported when starting a punch while another is
	// active without forcing.
	ErrPunchConflict = errors.New(
		"a punch is already active: stop it first, or force a new one",
	)

	// ErrInvalidTimeRange is reported when an edit would place a punch's
	// end before its start. The edit is rejected and no state changes.
	ErrInvalidTimeRange = errors.New(
		"the end time must not be earlier than the start time",
	)
)

// ImportError reports a malformed or incomplete import payload. The
// import is all-or-nothing: stored data is left untouched.
type ImportError struct {
	Reason string
}

func (e *ImportError) Error() string {
	return "import failed: " + e.Reason
}

// StorageError reports a persistence-medium failure, e.g. the database
// rejecting a write. In-memory state is not rolled back; the app keeps
// operating unpersisted instead of discarding user input.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "unable to persist data: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
