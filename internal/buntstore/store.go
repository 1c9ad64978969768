// Package buntstore keeps time entries, preferences and the activity log in a
// single tidwall/buntdb file. It suits the single-user CLI, where a SQL
// database would be more machinery than the data needs.
package buntstore

import (
	"errors"
	"fmt"

	"github.com/alexflint/go-filemutex"
	"github.com/rpggio/timeclock/internal/changefeed"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/tidwall/buntdb"
)

const (
	entryPrefix    = "entry:"
	prefsPrefix    = "prefs:"
	activityPrefix = "activity:"
	activitySeqKey = "seq:activity"
)

// ErrLocked is returned by Open when another process holds the database.
var ErrLocked = errors.New("buntdb store is in use by another process")

// Store is an open buntdb database.
type Store struct {
	db   *buntdb.DB
	lock *filemutex.FileMutex
	feed *changefeed.Feed
}

// Open opens (or creates) the database at path. ":memory:" keeps everything
// in memory.
//
// buntdb reads the file once and serves every later read from memory, so a
// second process would write against a stale copy. A file store therefore
// holds an exclusive lock on path+".lock" until Close.
func Open(path string) (*Store, error) {
	var lock *filemutex.FileMutex
	if path != ":memory:" {
		var err error
		lock, err = filemutex.New(path + ".lock")
		if err != nil {
			return nil, fmt.Errorf("failed to create lock for %s: %w", path, err)
		}
		if err := lock.TryLock(); err != nil {
			_ = lock.Close()
			if errors.Is(err, filemutex.AlreadyLocked) {
				return nil, fmt.Errorf("%w: %s", ErrLocked, path)
			}
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		if lock != nil {
			_ = lock.Close()
		}
		return nil, fmt.Errorf("failed to open buntdb %s: %w", path, err)
	}
	return &Store{db: db, lock: lock, feed: changefeed.New(nil)}, nil
}

// Close closes the database and releases the file lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		// Close on a filemutex also unlocks it.
		if lerr := s.lock.Close(); lerr != nil && err == nil {
			err = lerr
		}
		s.lock = nil
	}
	return err
}

// Feed returns the change feed entry writes are published on.
func (s *Store) Feed() *changefeed.Feed {
	return s.feed
}

// Subscribe registers fn for entry changes.
func (s *Store) Subscribe(fn func(entry.Change)) func() {
	return s.feed.Subscribe(fn)
}

func entryKey(userID, date string) string {
	return entryPrefix + userID + ":" + date
}

func prefsKey(userID string) string {
	return prefsPrefix + userID
}

func activityKey(userID string, seq uint64) string {
	return fmt.Sprintf("%s%s:%020d", activityPrefix, userID, seq)
}

func isNotFound(err error) bool {
	return errors.Is(err, buntdb.ErrNotFound)
}
