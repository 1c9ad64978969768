package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/repository"
)

// PreferencesRepository implements reminder.PreferencesRepository for SQLite
type PreferencesRepository struct {
	db *DB
}

// NewPreferencesRepository creates a new PreferencesRepository
func NewPreferencesRepository(db *DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetPreferences returns the user's stored preferences
func (r *PreferencesRepository) GetPreferences(ctx context.Context, userID string) (*reminder.Preferences, error) {
	query := `
		SELECT
			user_id, eye_care_enabled, eye_care_interval_minutes, clock_out_threshold_hours,
			last_eye_care_reminder, clock_out_reminder_for, modified_at
		FROM preferences
		WHERE user_id = ?
	`

	var p reminder.Preferences
	var lastEyeCare, clockOutFor sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.EyeCareEnabled,
		&p.EyeCareIntervalMinutes,
		&p.ClockOutThresholdHours,
		&lastEyeCare,
		&clockOutFor,
		&p.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	if lastEyeCare.Valid {
		p.LastEyeCareReminder = &lastEyeCare.Time
	}
	if clockOutFor.Valid {
		p.ClockOutReminderFor = &clockOutFor.Time
	}
	return &p, nil
}

// SavePreferences stores the user's settings, last writer wins. Reminder
// markers are left untouched. The caller stamps ModifiedAt.
func (r *PreferencesRepository) SavePreferences(ctx context.Context, p *reminder.Preferences) error {

	query := `
		INSERT INTO preferences (
			user_id, eye_care_enabled, eye_care_interval_minutes, clock_out_threshold_hours, modified_at
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			eye_care_enabled = excluded.eye_care_enabled,
			eye_care_interval_minutes = excluded.eye_care_interval_minutes,
			clock_out_threshold_hours = excluded.clock_out_threshold_hours,
			modified_at = excluded.modified_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.UserID,
		p.EyeCareEnabled,
		p.EyeCareIntervalMinutes,
		p.ClockOutThresholdHours,
		p.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// MarkEyeCareReminder records when the eye-care reminder fired
func (r *PreferencesRepository) MarkEyeCareReminder(ctx context.Context, userID string, at time.Time) error {
	return r.mark(ctx, userID, "last_eye_care_reminder", &at)
}

// MarkClockOutReminder records the session the forgot-clock-out reminder
// fired for; nil clears it
func (r *PreferencesRepository) MarkClockOutReminder(ctx context.Context, userID string, clockIn *time.Time) error {
	return r.mark(ctx, userID, "clock_out_reminder_for", clockIn)
}

// mark sets one marker column. A user with no saved settings gets the
// defaults with a zero modified_at: the settings were never changed.
func (r *PreferencesRepository) mark(ctx context.Context, userID, column string, at *time.Time) error {
	defaults := reminder.DefaultPreferences(userID)
	query := fmt.Sprintf(`
		INSERT INTO preferences (
			user_id, eye_care_enabled, eye_care_interval_minutes, clock_out_threshold_hours, %[1]s, modified_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET %[1]s = excluded.%[1]s
	`, column)
	_, err := r.db.ExecContext(ctx, query,
		userID,
		defaults.EyeCareEnabled,
		defaults.EyeCareIntervalMinutes,
		defaults.ClockOutThresholdHours,
		at,
		defaults.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminder: %w", err)
	}
	return nil
}
