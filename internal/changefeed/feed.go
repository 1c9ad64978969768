// Package changefeed fans out entry change notifications to interested
// subscribers, both for writes made in this process and for writes another
// process made to the shared store file.
package changefeed

import (
	"log/slog"
	"sync"

	"github.com/rpggio/timeclock/internal/domain/entry"
)

// Feed is an in-process publish/subscribe hub for entry changes.
// Subscribers are invoked synchronously in Publish and must not block.
type Feed struct {
	mu     sync.RWMutex
	subs   map[int]func(entry.Change)
	nextID int
	logger *slog.Logger
}

// New creates an empty feed.
func New(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Feed{subs: make(map[int]func(entry.Change)), logger: logger}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (f *Feed) Subscribe(fn func(entry.Change)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Publish delivers c to every current subscriber. A panicking subscriber is
// logged and does not prevent delivery to the rest.
func (f *Feed) Publish(c entry.Change) {
	f.mu.RLock()
	fns := make([]func(entry.Change), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()

	for _, fn := range fns {
		f.deliver(fn, c)
	}
}

// Len returns the number of active subscribers.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

func (f *Feed) deliver(fn func(entry.Change), c entry.Change) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("change subscriber panicked", "user_id", c.UserID, "panic", r)
		}
	}()
	fn(c)
}
