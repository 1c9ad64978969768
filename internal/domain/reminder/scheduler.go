package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/repository"
)

const (
	DefaultCheckInterval = time.Minute
	DefaultSweepInterval = 15 * time.Minute
)

// SchedulerConfig tunes the policy timer. Only Sweeper, Suppressor, Changes
// and Activities are optional.
type SchedulerConfig struct {
	CheckInterval time.Duration
	SweepInterval time.Duration

	Sweeper    Sweeper
	Suppressor Suppressor
	Changes    ChangeSource
	Activities *activity.Service
}

// Scheduler is the policy timer: it evaluates reminders for watched users and
// runs the stale sweep. Every decision is made from wall-clock deltas against
// stored timestamps, so a process that was suspended catches up on its first
// tick after resuming.
type Scheduler struct {
	entries  EntrySource
	prefs    PreferencesRepository
	notifier Notifier
	clock    clock.Clock
	cfg      SchedulerConfig
	logger   *slog.Logger

	mu          sync.Mutex
	users       map[string]struct{}
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	wake        chan string
	unsubscribe func()
	lastSweep   time.Time
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(entries EntrySource, prefs PreferencesRepository, notifier Notifier, clk clock.Clock, cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &Scheduler{
		entries:  entries,
		prefs:    prefs,
		notifier: notifier,
		clock:    clk,
		cfg:      cfg,
		logger:   logger,
		users:    make(map[string]struct{}),
		wake:     make(chan string, 64),
	}
}

// Watch adds a user to the reminder checks (login).
func (s *Scheduler) Watch(userID string) {
	s.mu.Lock()
	s.users[userID] = struct{}{}
	s.mu.Unlock()
	s.poke(userID)
}

// Unwatch removes a user (logout). No reminder fires for the user after
// Unwatch returns, except from a check that was already running.
func (s *Scheduler) Unwatch(userID string) {
	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()
}

// Watched returns the watched users in sorted order.
func (s *Scheduler) Watched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.users))
	for u := range s.users {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// Start runs the timer loop in the background until ctx is cancelled or Stop
// is called. The first check runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	if s.cfg.Changes != nil {
		s.unsubscribe = s.cfg.Changes.Subscribe(s.onChange)
	}
	done := s.done
	s.mu.Unlock()

	go s.run(ctx, done)
	s.logger.Info("reminder scheduler started", "check_interval", s.cfg.CheckInterval, "sweep_interval", s.cfg.SweepInterval)
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	done := s.done
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	<-done
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		case userID := <-s.wake:
			if s.isWatched(userID) {
				if _, err := s.CheckNow(ctx, userID); err != nil {
					s.logger.Warn("reminder check failed", "user_id", userID, "error", err)
				}
			}
		}
	}
}

// Tick runs the sweep when due and checks every watched user.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()
	s.maybeSweep(ctx, now)
	for _, userID := range s.Watched() {
		if ctx.Err() != nil {
			return
		}
		if !s.isWatched(userID) {
			continue
		}
		if _, err := s.CheckNow(ctx, userID); err != nil {
			s.logger.Warn("reminder check failed", "user_id", userID, "error", err)
		}
	}
}

func (s *Scheduler) maybeSweep(ctx context.Context, now time.Time) {
	if s.cfg.Sweeper == nil {
		return
	}
	s.mu.Lock()
	due := s.lastSweep.IsZero() || now.Sub(s.lastSweep) >= s.cfg.SweepInterval || now.Before(s.lastSweep)
	if due {
		s.lastSweep = now
	}
	s.mu.Unlock()
	if !due {
		return
	}

	res, err := s.cfg.Sweeper.AutoCloseStaleEntries(ctx, now)
	if err != nil {
		s.logger.Error("stale sweep failed", "error", err)
		return
	}
	if len(res.Closed) > 0 || len(res.Failures) > 0 {
		s.logger.Info("stale sweep finished", "closed", len(res.Closed), "failed", len(res.Failures))
	}
}

// CheckNow evaluates both reminders for userID and returns the kinds that
// fired. Notifier errors are logged, not returned.
func (s *Scheduler) CheckNow(ctx context.Context, userID string) ([]Kind, error) {
	e, err := s.entries.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading entry: %w", err)
	}
	p, err := s.prefs.GetPreferences(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		p = DefaultPreferences(userID)
	} else if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	p = NormalizePreferences(p)
	now := s.clock.Now()

	var errs []error
	if clockOutRearmed(e, p) {
		if err := s.prefs.MarkClockOutReminder(ctx, userID, nil); err != nil {
			errs = append(errs, err)
		}
	}

	var fired []Kind
	if EyeCareDue(e, p, now) && !s.suppressed(userID, KindEyeCare, now) {
		s.fire(ctx, Notification{
			UserID:  userID,
			Kind:    KindEyeCare,
			Title:   "Rest your eyes",
			Message: "Look at something 20 feet away for 20 seconds.",
			At:      now,
		}, e)
		if err := s.prefs.MarkEyeCareReminder(ctx, userID, now); err != nil {
			errs = append(errs, err)
		}
		fired = append(fired, KindEyeCare)
	}

	if ClockOutDue(e, p, now) && !s.suppressed(userID, KindClockOut, now) {
		s.fire(ctx, Notification{
			UserID:  userID,
			Kind:    KindClockOut,
			Title:   "Still working?",
			Message: fmt.Sprintf("You clocked in at %s. Don't forget to clock out.", e.ClockIn.Format(time.Kitchen)),
			At:      now,
		}, e)
		if err := s.prefs.MarkClockOutReminder(ctx, userID, e.ClockIn); err != nil {
			errs = append(errs, err)
		}
		fired = append(fired, KindClockOut)
	}

	return fired, errors.Join(errs...)
}

func (s *Scheduler) fire(ctx context.Context, n Notification, e *entry.TimeEntry) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notification failed", "user_id", n.UserID, "kind", n.Kind, "error", err)
	}
	s.logger.Info("reminder fired", "user_id", n.UserID, "kind", n.Kind)

	typ := activity.TypeEyeCareReminder
	if n.Kind == KindClockOut {
		typ = activity.TypeClockOutReminder
	}
	s.cfg.Activities.Record(ctx, n.UserID, &activity.ActivityEntry{
		EntryID:      &e.ID,
		ActivityType: typ,
		Summary:      n.Title,
		CreatedAt:    n.At,
	})
}

func (s *Scheduler) suppressed(userID string, kind Kind, now time.Time) bool {
	if s.cfg.Suppressor == nil {
		return false
	}
	if s.cfg.Suppressor.Suppressed(userID, kind, now) {
		s.logger.Debug("reminder suppressed", "user_id", userID, "kind", kind)
		return true
	}
	return false
}

func (s *Scheduler) isWatched(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[userID]
	return ok
}

func (s *Scheduler) onChange(c entry.Change) {
	if c.External || c.UserID == "" {
		for _, u := range s.Watched() {
			s.poke(u)
		}
		return
	}
	if s.isWatched(c.UserID) {
		s.poke(c.UserID)
	}
}

// poke schedules an immediate check without blocking; if the queue is full
// the next tick covers it.
func (s *Scheduler) poke(userID string) {
	select {
	case s.wake <- userID:
	default:
	}
}
