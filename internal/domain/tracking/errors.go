package tracking

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict indicates the entry changed between read and write.
	ErrConflict = errors.New("time entry modified concurrently")
	// ErrStoreUnavailable indicates the record store failed. It is never
	// returned for a missing entry.
	ErrStoreUnavailable = errors.New("time entry store unavailable")
	// ErrStaleEntryCloseFailure indicates a stale entry could not be closed.
	ErrStaleEntryCloseFailure = errors.New("failed to close stale time entry")
	// ErrInvalidInput indicates a missing user or malformed argument.
	ErrInvalidInput = errors.New("invalid time tracking input")
)

// StaleCloseError describes one entry the sweep could not close.
type StaleCloseError struct {
	UserID  string
	Date    string
	EntryID string
	Err     error
}

func (e *StaleCloseError) Error() string {
	return fmt.Sprintf("closing stale entry %s (%s, %s): %v", e.EntryID, e.UserID, e.Date, e.Err)
}

func (e *StaleCloseError) Unwrap() error { return e.Err }

// Is matches ErrStaleEntryCloseFailure as well as the underlying cause.
func (e *StaleCloseError) Is(target error) bool {
	return target == ErrStaleEntryCloseFailure
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
