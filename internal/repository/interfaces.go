package repository

import (
	"context"

	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
)

// EntryRepository manages time entry persistence. Entries are keyed by
// (userID, date); Upsert is the only write and carries the version the caller
// read, so concurrent writers cannot silently overwrite each other.
type EntryRepository interface {
	// Get returns ErrNotFound when the user has no entry for date.
	Get(ctx context.Context, userID, date string) (*entry.TimeEntry, error)
	// Upsert stores e if the stored version equals expectedVersion (0 means the
	// entry must not exist yet) and returns ErrConflict otherwise. On success
	// e.Version holds the new version.
	Upsert(ctx context.Context, e *entry.TimeEntry, expectedVersion int64) error
	// ListRange returns the user's entries with from <= date <= to, by date.
	ListRange(ctx context.Context, userID, from, to string) ([]entry.TimeEntry, error)
	// ListOpen returns entries whose session is still open.
	ListOpen(ctx context.Context, opts ListOpenOptions) ([]entry.TimeEntry, error)
	// Subscribe registers fn for change notifications and returns the
	// function that unregisters it.
	Subscribe(fn func(entry.Change)) func()
}

// ListOpenOptions filters open entries.
type ListOpenOptions struct {
	UserID string
	// Before keeps only entries dated strictly before this date key.
	Before string
	Limit  int
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, userID string, entry *activity.ActivityEntry) error
	List(ctx context.Context, userID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
