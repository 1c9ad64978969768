package reminder

import (
	"context"
	"time"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/tracking"
)

// PreferencesRepository provides persistence for preferences and reminder
// markers. GetPreferences returns repository.ErrNotFound for unknown users.
type PreferencesRepository interface {
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
	SavePreferences(ctx context.Context, p *Preferences) error
	MarkEyeCareReminder(ctx context.Context, userID string, at time.Time) error
	MarkClockOutReminder(ctx context.Context, userID string, clockIn *time.Time) error
}

// EntrySource returns the user's current entry.
type EntrySource interface {
	Snapshot(ctx context.Context, userID string) (*entry.TimeEntry, error)
}

// ChangeSource announces entry writes.
type ChangeSource interface {
	Subscribe(fn func(entry.Change)) func()
}

// Notifier delivers reminders. Delivery is fire-and-forget: errors are
// logged and never retried.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Suppressor defers reminders, e.g. while the user is presenting. A
// suppressed reminder is not marked as shown and fires on the first check
// after suppression lifts.
type Suppressor interface {
	Suppressed(userID string, kind Kind, now time.Time) bool
}

// Sweeper closes stale entries.
type Sweeper interface {
	AutoCloseStaleEntries(ctx context.Context, asOf time.Time) (tracking.SweepResult, error)
}
