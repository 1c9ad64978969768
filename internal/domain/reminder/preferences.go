package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/repository"
)

// ErrInvalidPreferences indicates an out-of-range preference value.
var ErrInvalidPreferences = errors.New("invalid reminder preferences")

// PreferencesUpdate changes the non-nil settings.
type PreferencesUpdate struct {
	EyeCareEnabled         *bool    `json:"eye_care_enabled,omitempty"`
	EyeCareIntervalMinutes *int     `json:"eye_care_interval_minutes,omitempty"`
	ClockOutThresholdHours *float64 `json:"clock_out_threshold_hours,omitempty"`
}

// PreferencesService reads and updates reminder preferences.
type PreferencesService struct {
	repo       PreferencesRepository
	clock      clock.Clock
	activities *activity.Service
	logger     *slog.Logger
}

// NewPreferencesService creates a preferences service. activities may be nil.
func NewPreferencesService(repo PreferencesRepository, clk clock.Clock, activities *activity.Service, logger *slog.Logger) *PreferencesService {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PreferencesService{repo: repo, clock: clk, activities: activities, logger: logger}
}

// Get returns the user's preferences, defaults when none were saved.
func (s *PreferencesService) Get(ctx context.Context, userID string) (*Preferences, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidPreferences)
	}
	p, err := s.repo.GetPreferences(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	return NormalizePreferences(p), nil
}

// Update applies upd, last writer wins.
func (s *PreferencesService) Update(ctx context.Context, userID string, upd PreferencesUpdate) (*Preferences, error) {
	if upd.EyeCareIntervalMinutes != nil {
		if m := *upd.EyeCareIntervalMinutes; m < MinEyeCareIntervalMinutes || m > MaxEyeCareIntervalMinutes {
			return nil, fmt.Errorf("%w: eye care interval must be %d-%d minutes, got %d",
				ErrInvalidPreferences, MinEyeCareIntervalMinutes, MaxEyeCareIntervalMinutes, m)
		}
	}
	if upd.ClockOutThresholdHours != nil && (*upd.ClockOutThresholdHours <= 0 || *upd.ClockOutThresholdHours > 24) {
		return nil, fmt.Errorf("%w: clock-out threshold must be within (0, 24] hours", ErrInvalidPreferences)
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.EyeCareEnabled != nil {
		p.EyeCareEnabled = *upd.EyeCareEnabled
	}
	if upd.EyeCareIntervalMinutes != nil {
		p.EyeCareIntervalMinutes = *upd.EyeCareIntervalMinutes
	}
	if upd.ClockOutThresholdHours != nil {
		p.ClockOutThresholdHours = *upd.ClockOutThresholdHours
	}
	p.ModifiedAt = s.clock.Now()

	if err := s.repo.SavePreferences(ctx, p); err != nil {
		return nil, fmt.Errorf("saving preferences: %w", err)
	}
	s.logger.Info("preferences updated", "user_id", userID,
		"eye_care_enabled", p.EyeCareEnabled, "eye_care_interval_minutes", p.EyeCareIntervalMinutes,
		"clock_out_threshold_hours", p.ClockOutThresholdHours)
	s.activities.Record(ctx, userID, &activity.ActivityEntry{
		ActivityType: activity.TypePreferences,
		Summary:      "reminder preferences updated",
		CreatedAt:    p.ModifiedAt,
	})
	return p, nil
}
