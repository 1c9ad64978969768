package tracking

import (
	"context"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/timecalc"
)

// Watch subscribes the engine to the store's change feed so cached snapshots
// are dropped when any writer (including another process) changes an entry.
// Calling Watch again is a no-op until Unwatch.
func (s *Service) Watch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unwatch != nil {
		return
	}
	s.unwatch = s.entries.Subscribe(s.invalidate)
}

// Unwatch stops listening for store changes.
func (s *Service) Unwatch() {
	s.mu.Lock()
	unwatch := s.unwatch
	s.unwatch = nil
	s.mu.Unlock()
	if unwatch != nil {
		unwatch()
	}
}

// Snapshot returns today's entry for display, served from cache when the
// store has not reported a change since it was read. It never writes.
func (s *Service) Snapshot(ctx context.Context, userID string) (*entry.TimeEntry, error) {
	today := timecalc.DateKey(s.Now())
	s.mu.Lock()
	cached, ok := s.snapshots[userID]
	s.mu.Unlock()
	if ok && cached.Date == today {
		return cached.Clone(), nil
	}
	return s.Today(ctx, userID)
}

func (s *Service) remember(e *entry.TimeEntry) {
	if e == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// only today's entry is cached; stale closes for old days just invalidate
	if e.Date != timecalc.DateKey(s.Now()) {
		delete(s.snapshots, e.UserID)
		return
	}
	s.snapshots[e.UserID] = e.Clone()
}

func (s *Service) invalidate(c entry.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.External || c.UserID == "" {
		clear(s.snapshots)
		return
	}
	cached, ok := s.snapshots[c.UserID]
	if ok && (c.Date == "" || c.Date == cached.Date) && c.Version != cached.Version {
		delete(s.snapshots, c.UserID)
	}
}
