package reminder

import (
	"sync"
	"time"
)

// Snoozer is a Suppressor that holds a user's reminders until a deadline.
type Snoozer struct {
	mu    sync.Mutex
	until map[string]time.Time
}

// NewSnoozer creates an empty Snoozer.
func NewSnoozer() *Snoozer {
	return &Snoozer{until: make(map[string]time.Time)}
}

// Snooze holds the user's reminders until the given instant.
func (s *Snoozer) Snooze(userID string, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.until[userID] = until
}

// Resume lifts a snooze early.
func (s *Snoozer) Resume(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.until, userID)
}

// Until returns the end of the user's snooze, if any.
func (s *Snoozer) Until(userID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.until[userID]
	return t, ok
}

// Suppressed implements Suppressor. Both reminder kinds are held.
func (s *Snoozer) Suppressed(userID string, _ Kind, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.until[userID]
	if !ok {
		return false
	}
	if !now.Before(until) {
		delete(s.until, userID)
		return false
	}
	return true
}
