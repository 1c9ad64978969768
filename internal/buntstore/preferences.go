package buntstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/tidwall/buntdb"
)

// PreferencesRepository implements reminder.PreferencesRepository on buntdb.
type PreferencesRepository struct {
	s *Store
}

// NewPreferencesRepository creates a new PreferencesRepository.
func NewPreferencesRepository(s *Store) *PreferencesRepository {
	return &PreferencesRepository{s: s}
}

// GetPreferences returns the user's stored preferences.
func (r *PreferencesRepository) GetPreferences(_ context.Context, userID string) (*reminder.Preferences, error) {
	var p *reminder.Preferences
	err := r.s.db.View(func(tx *buntdb.Tx) error {
		var err error
		p, err = getPrefs(tx, userID)
		return err
	})
	if isNotFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return p, nil
}

// SavePreferences stores the user's settings, last writer wins. Reminder
// markers are left untouched. The caller stamps ModifiedAt.
func (r *PreferencesRepository) SavePreferences(_ context.Context, p *reminder.Preferences) error {
	return r.update(p.UserID, func(stored *reminder.Preferences) {
		stored.EyeCareEnabled = p.EyeCareEnabled
		stored.EyeCareIntervalMinutes = p.EyeCareIntervalMinutes
		stored.ClockOutThresholdHours = p.ClockOutThresholdHours
		stored.ModifiedAt = p.ModifiedAt
	})
}

// MarkEyeCareReminder records when the eye-care reminder fired.
func (r *PreferencesRepository) MarkEyeCareReminder(_ context.Context, userID string, at time.Time) error {
	return r.update(userID, func(stored *reminder.Preferences) {
		stored.LastEyeCareReminder = &at
	})
}

// MarkClockOutReminder records the session the forgot-clock-out reminder
// fired for; nil clears it.
func (r *PreferencesRepository) MarkClockOutReminder(_ context.Context, userID string, clockIn *time.Time) error {
	return r.update(userID, func(stored *reminder.Preferences) {
		stored.ClockOutReminderFor = clockIn
	})
}

func (r *PreferencesRepository) update(userID string, apply func(*reminder.Preferences)) error {
	err := r.s.db.Update(func(tx *buntdb.Tx) error {
		stored, err := getPrefs(tx, userID)
		if isNotFound(err) {
			// Markers alone leave the settings at their never-saved defaults.
			stored = reminder.DefaultPreferences(userID)
		} else if err != nil {
			return err
		}
		apply(stored)
		raw, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(prefsKey(userID), string(raw), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

func getPrefs(tx *buntdb.Tx, userID string) (*reminder.Preferences, error) {
	v, err := tx.Get(prefsKey(userID))
	if err != nil {
		return nil, err
	}
	var p reminder.Preferences
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return nil, fmt.Errorf("decoding preferences: %w", err)
	}
	return &p, nil
}
