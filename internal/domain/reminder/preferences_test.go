package reminder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/rpggio/timeclock/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPreferencesService_GetDefaults(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.PreferencesRepository{}
	repo.On("GetPreferences", ctx, "u1").Return(nil, repository.ErrNotFound)
	repo.On("GetPreferences", ctx, "u2").Return(nil, errors.New("locked"))

	svc := reminder.NewPreferencesService(repo, clock.NewManual(nine), nil, nil)
	p, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, reminder.DefaultPreferences("u1"), p)

	_, err = svc.Get(ctx, "u2")
	require.Error(t, err)
	require.NotErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Get(ctx, "")
	require.ErrorIs(t, err, reminder.ErrInvalidPreferences)
}

func TestPreferencesService_Update(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.PreferencesRepository{}
	repo.On("GetPreferences", ctx, "u1").Return(reminder.DefaultPreferences("u1"), nil)
	repo.On("SavePreferences", ctx, mock.MatchedBy(func(p *reminder.Preferences) bool {
		return p.UserID == "u1" && p.EyeCareIntervalMinutes == 30 && !p.EyeCareEnabled && p.ClockOutThresholdHours == 10
	})).Return(nil).Once()

	svc := reminder.NewPreferencesService(repo, clock.NewManual(nine), nil, nil)

	interval := 30
	disabled := false
	p, err := svc.Update(ctx, "u1", reminder.PreferencesUpdate{EyeCareIntervalMinutes: &interval, EyeCareEnabled: &disabled})
	require.NoError(t, err)
	require.Equal(t, 30, p.EyeCareIntervalMinutes)
	require.Equal(t, nine, p.ModifiedAt)
	repo.AssertExpectations(t)
}

func TestPreferencesService_UpdateRejectsOutOfRange(t *testing.T) {
	svc := reminder.NewPreferencesService(&mocks.PreferencesRepository{}, nil, nil, nil)
	ctx := context.Background()

	for _, m := range []int{0, 14, 61} {
		m := m
		_, err := svc.Update(ctx, "u1", reminder.PreferencesUpdate{EyeCareIntervalMinutes: &m})
		require.ErrorIs(t, err, reminder.ErrInvalidPreferences, "interval %d", m)
	}
	zero := 0.0
	_, err := svc.Update(ctx, "u1", reminder.PreferencesUpdate{ClockOutThresholdHours: &zero})
	require.ErrorIs(t, err, reminder.ErrInvalidPreferences)
}
