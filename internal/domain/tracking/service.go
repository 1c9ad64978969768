// Package tracking implements the time tracking engine: the clock-in,
// clock-out and break transitions of a user's day and the sweep that closes
// sessions left open past their day.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/hours"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/rpggio/timeclock/internal/timecalc"
)

// Config tunes the engine.
type Config struct {
	// Location defines calendar days. Defaults to time.Local.
	Location    *time.Location
	StalePolicy StalePolicy
	MaxShift    time.Duration
}

// Service handles time entry business logic.
type Service struct {
	entries    EntryRepository
	clock      clock.Clock
	activities *activity.Service
	logger     *slog.Logger

	loc      *time.Location
	policy   StalePolicy
	maxShift time.Duration
	newID    func() string

	mu        sync.Mutex
	snapshots map[string]*entry.TimeEntry
	unwatch   func()
}

// NewService creates a new tracking service. activities may be nil.
func NewService(entries EntryRepository, clk clock.Clock, cfg Config, activities *activity.Service, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.StalePolicy == "" {
		cfg.StalePolicy = PolicyEndOfDay
	}
	if cfg.MaxShift <= 0 {
		cfg.MaxShift = DefaultMaxShift
	}
	return &Service{
		entries:    entries,
		clock:      clk,
		activities: activities,
		logger:     logger,
		loc:        cfg.Location,
		policy:     cfg.StalePolicy,
		maxShift:   cfg.MaxShift,
		newID:      uuid.NewString,
		snapshots:  make(map[string]*entry.TimeEntry),
	}
}

// Location returns the location that defines calendar days.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the current instant in the engine's location.
func (s *Service) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// EnsureTodayEntry returns the user's entry for today, or an unsaved
// NOT_STARTED entry with Version 0 when there is none yet.
func (s *Service) EnsureTodayEntry(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	return s.load(ctx, userID, timecalc.DateKey(s.Now()))
}

// Today is EnsureTodayEntry for read-only callers.
func (s *Service) Today(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	e, err := s.EnsureTodayEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.remember(e)
	return e, nil
}

// LiveHours returns today's entry with its net worked hours as of now.
func (s *Service) LiveHours(ctx context.Context, userID string) (*entry.TimeEntry, float64, error) {
	e, err := s.Today(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return e, hours.NetWorkedHours(e, s.Now()), nil
}

// ClockIn starts today's session. Stale sessions the user left open on
// earlier days are closed first.
func (s *Service) ClockIn(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	if err := s.closeOwnStale(ctx, userID); err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, entry.ActionClockIn, activity.TypeClockIn, func(e *entry.TimeEntry, now time.Time) {
		e.ClockIn = &now
		e.ClockOut = nil
	})
}

// ClockOut ends today's session and stamps its total hours.
func (s *Service) ClockOut(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	return s.apply(ctx, userID, entry.ActionClockOut, activity.TypeClockOut, func(e *entry.TimeEntry, now time.Time) {
		out := notBefore(now, *e.ClockIn)
		e.ClockOut = &out
		total := hours.NetWorkedHours(e, out)
		e.TotalHours = &total
	})
}

// StartLunchBreak opens the day's single lunch break.
func (s *Service) StartLunchBreak(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	return s.apply(ctx, userID, entry.ActionStartLunch, activity.TypeLunchStarted, func(e *entry.TimeEntry, now time.Time) {
		e.LunchBreak = &entry.Break{ID: s.newID(), Start: notBefore(now, *e.ClockIn)}
	})
}

// EndLunchBreak closes the open lunch break.
func (s *Service) EndLunchBreak(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	return s.apply(ctx, userID, entry.ActionEndLunch, activity.TypeLunchEnded, func(e *entry.TimeEntry, now time.Time) {
		closeBreak(e.LunchBreak, now)
	})
}

// StartShortBreak opens a new short break.
func (s *Service) StartShortBreak(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	return s.apply(ctx, userID, entry.ActionStartShortBreak, activity.TypeBreakStarted, func(e *entry.TimeEntry, now time.Time) {
		e.ShortBreaks = append(e.ShortBreaks, entry.Break{ID: s.newID(), Start: notBefore(now, *e.ClockIn)})
	})
}

// EndShortBreak closes the open short break.
func (s *Service) EndShortBreak(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	return s.apply(ctx, userID, entry.ActionEndShortBreak, activity.TypeBreakEnded, func(e *entry.TimeEntry, now time.Time) {
		closeBreak(e.OpenShortBreak(), now)
	})
}

// apply runs one read-modify-write of today's entry. The write only succeeds
// if nobody else wrote the entry since it was read.
func (s *Service) apply(
	ctx context.Context,
	userID string,
	action entry.Action,
	activityType activity.ActivityType,
	mutate func(e *entry.TimeEntry, now time.Time),
) (*entry.TimeEntry, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	now := s.Now()
	date := timecalc.DateKey(now)

	current, err := s.load(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if err := entry.Validate(current); err != nil {
		return nil, err
	}
	next, err := entry.ValidateTransition(current, action)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	updated.Status = next
	mutate(updated, now)
	updated.LastModified = now
	if err := entry.Validate(updated); err != nil {
		return nil, err
	}

	if err := s.entries.Upsert(ctx, updated, current.Version); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Warn("time entry write conflict", "user_id", userID, "date", date, "action", action)
			s.activities.Record(ctx, userID, &activity.ActivityEntry{
				EntryID:      &updated.ID,
				ActivityType: activity.TypeConflictDetected,
				Summary:      fmt.Sprintf("%s rejected: entry for %s changed concurrently", action, date),
				CreatedAt:    now,
			})
			return nil, fmt.Errorf("%s on %s: %w", action, date, ErrConflict)
		}
		return nil, storeErr("saving time entry", err)
	}

	s.logger.Info("time entry updated", "user_id", userID, "date", date, "action", action, "status", next)
	s.remember(updated)
	s.activities.Record(ctx, userID, &activity.ActivityEntry{
		EntryID:      &updated.ID,
		ActivityType: activityType,
		Summary:      fmt.Sprintf("%s at %s", action, now.Format(time.Kitchen)),
		CreatedAt:    now,
	})
	return updated.Clone(), nil
}

// load returns the stored entry for (userID, date) or a fresh unsaved one.
func (s *Service) load(ctx context.Context, userID, date string) (*entry.TimeEntry, error) {
	e, err := s.entries.Get(ctx, userID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return entry.New(s.newID(), userID, date), nil
	}
	if err != nil {
		return nil, storeErr("loading time entry", err)
	}
	return e, nil
}

func closeBreak(b *entry.Break, now time.Time) {
	end := notBefore(now, b.Start)
	b.End = &end
	secs := int64(end.Sub(b.Start) / time.Second)
	b.DurationSeconds = &secs
}

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return nil
}
