package tracking

import (
	"context"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/repository"
)

// EntryRepository provides the persistence operations the engine needs.
type EntryRepository interface {
	Get(ctx context.Context, userID, date string) (*entry.TimeEntry, error)
	Upsert(ctx context.Context, e *entry.TimeEntry, expectedVersion int64) error
	ListOpen(ctx context.Context, opts repository.ListOpenOptions) ([]entry.TimeEntry, error)
	Subscribe(fn func(entry.Change)) func()
}
