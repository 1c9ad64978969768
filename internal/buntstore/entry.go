package buntstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/tidwall/buntdb"
)

// EntryRepository implements repository.EntryRepository on buntdb.
type EntryRepository struct {
	s *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(s *Store) *EntryRepository {
	return &EntryRepository{s: s}
}

// Get retrieves the entry for a user and day.
func (r *EntryRepository) Get(_ context.Context, userID, date string) (*entry.TimeEntry, error) {
	var e *entry.TimeEntry
	err := r.s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(entryKey(userID, date))
		if err != nil {
			return err
		}
		e, err = decodeEntry(v)
		return err
	})
	if isNotFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return e, nil
}

// Upsert writes the entry if the stored version still equals expectedVersion.
// The check and the write happen in one transaction.
func (r *EntryRepository) Upsert(_ context.Context, e *entry.TimeEntry, expectedVersion int64) error {
	key := entryKey(e.UserID, e.Date)
	newVersion := expectedVersion + 1

	err := r.s.db.Update(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		switch {
		case isNotFound(err):
			if expectedVersion != 0 {
				return repository.ErrNotFound
			}
		case err != nil:
			return err
		default:
			stored, err := decodeEntry(v)
			if err != nil {
				return err
			}
			if expectedVersion == 0 || stored.Version != expectedVersion {
				return repository.ErrConflict
			}
		}

		next := *e
		next.Version = newVersion
		if next.ShortBreaks == nil {
			next.ShortBreaks = []entry.Break{}
		}
		raw, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("encoding time entry: %w", err)
		}
		_, _, err = tx.Set(key, string(raw), nil)
		return err
	})
	if err != nil {
		return err
	}

	e.Version = newVersion
	r.s.feed.Publish(entry.Change{UserID: e.UserID, Date: e.Date, Version: newVersion})
	return nil
}

// ListRange returns a user's entries between two day keys, inclusive.
func (r *EntryRepository) ListRange(_ context.Context, userID, from, to string) ([]entry.TimeEntry, error) {
	entries := []entry.TimeEntry{}
	err := r.s.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendRange("", entryKey(userID, from), entryKey(userID, to)+"\x00", func(_, v string) bool {
			e, err := decodeEntry(v)
			if err != nil {
				decodeErr = err
				return false
			}
			if e.UserID == userID {
				entries = append(entries, *e)
			}
			return true
		})
		if decodeErr != nil {
			return decodeErr
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, nil
}

// ListOpen returns entries with an unfinished session.
func (r *EntryRepository) ListOpen(_ context.Context, opts repository.ListOpenOptions) ([]entry.TimeEntry, error) {
	pattern := entryPrefix + "*"
	if opts.UserID != "" {
		pattern = entryPrefix + opts.UserID + ":*"
	}

	entries := []entry.TimeEntry{}
	err := r.s.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendKeys(pattern, func(_, v string) bool {
			e, err := decodeEntry(v)
			if err != nil {
				decodeErr = err
				return false
			}
			if !e.IsOpen() {
				return true
			}
			if opts.UserID != "" && e.UserID != opts.UserID {
				return true
			}
			if opts.Before != "" && e.Date >= opts.Before {
				return true
			}
			entries = append(entries, *e)
			return true
		})
		if decodeErr != nil {
			return decodeErr
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list open time entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].UserID < entries[j].UserID
	})
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}

// Subscribe registers fn for entry changes.
func (r *EntryRepository) Subscribe(fn func(entry.Change)) func() {
	return r.s.Subscribe(fn)
}

func decodeEntry(v string) (*entry.TimeEntry, error) {
	var e entry.TimeEntry
	if err := json.Unmarshal([]byte(v), &e); err != nil {
		return nil, fmt.Errorf("decoding time entry: %w", err)
	}
	if e.ShortBreaks == nil {
		e.ShortBreaks = []entry.Break{}
	}
	return &e, nil
}
