package buntstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/tidwall/buntdb"
)

// ActivityRepository implements repository.ActivityRepository on buntdb.
type ActivityRepository struct {
	s *Store
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(s *Store) *ActivityRepository {
	return &ActivityRepository{s: s}
}

// Log appends an activity entry and assigns its ID.
func (r *ActivityRepository) Log(_ context.Context, userID string, e *activity.ActivityEntry) error {
	e.UserID = userID

	err := r.s.db.Update(func(tx *buntdb.Tx) error {
		var seq uint64
		v, err := tx.Get(activitySeqKey)
		if err == nil {
			seq, err = strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt activity sequence: %w", err)
			}
		} else if !isNotFound(err) {
			return err
		}
		seq++
		if _, _, err := tx.Set(activitySeqKey, strconv.FormatUint(seq, 10), nil); err != nil {
			return err
		}

		e.ID = int64(seq)
		raw, err := json.Marshal(e)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(activityKey(userID, seq), string(raw), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// List returns activity entries matching the given filters, newest first.
func (r *ActivityRepository) List(_ context.Context, userID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	entries := []activity.ActivityEntry{}
	err := r.s.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendKeys(activityPrefix+userID+":*", func(_, v string) bool {
			var e activity.ActivityEntry
			if err := json.Unmarshal([]byte(v), &e); err != nil {
				decodeErr = err
				return false
			}
			if e.UserID != userID || !matches(e, opts) {
				return true
			}
			entries = append(entries, e)
			return true
		})
		if decodeErr != nil {
			return decodeErr
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(entries) {
			return []activity.ActivityEntry{}, nil
		}
		entries = entries[opts.Offset:]
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}

func matches(e activity.ActivityEntry, opts activity.ListActivityOptions) bool {
	if opts.EntryID != nil && (e.EntryID == nil || *e.EntryID != *opts.EntryID) {
		return false
	}
	if opts.ActivityType != nil && e.ActivityType != *opts.ActivityType {
		return false
	}
	if opts.Since != nil && e.CreatedAt.Before(*opts.Since) {
		return false
	}
	return true
}
