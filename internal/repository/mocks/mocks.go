package mocks

import (
	"context"
	"time"

	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/stretchr/testify/mock"
)

// EntryRepository is a mock for repository.EntryRepository.
type EntryRepository struct {
	mock.Mock
}

func (m *EntryRepository) Get(ctx context.Context, userID, date string) (*entry.TimeEntry, error) {
	args := m.Called(ctx, userID, date)
	if e, ok := args.Get(0).(*entry.TimeEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) Upsert(ctx context.Context, e *entry.TimeEntry, expectedVersion int64) error {
	args := m.Called(ctx, e, expectedVersion)
	return args.Error(0)
}

func (m *EntryRepository) ListRange(ctx context.Context, userID, from, to string) ([]entry.TimeEntry, error) {
	args := m.Called(ctx, userID, from, to)
	if list, ok := args.Get(0).([]entry.TimeEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) ListOpen(ctx context.Context, opts repository.ListOpenOptions) ([]entry.TimeEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]entry.TimeEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Subscribe is not recorded as a call; mocks never publish changes.
func (m *EntryRepository) Subscribe(func(entry.Change)) func() {
	return func() {}
}

// PreferencesRepository is a mock for reminder.PreferencesRepository.
type PreferencesRepository struct {
	mock.Mock
}

func (m *PreferencesRepository) GetPreferences(ctx context.Context, userID string) (*reminder.Preferences, error) {
	args := m.Called(ctx, userID)
	if p, ok := args.Get(0).(*reminder.Preferences); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PreferencesRepository) SavePreferences(ctx context.Context, p *reminder.Preferences) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PreferencesRepository) MarkEyeCareReminder(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *PreferencesRepository) MarkClockOutReminder(ctx context.Context, userID string, clockIn *time.Time) error {
	args := m.Called(ctx, userID, clockIn)
	return args.Error(0)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, userID string, e *activity.ActivityEntry) error {
	args := m.Called(ctx, userID, e)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, userID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, userID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Notifier is a mock for reminder.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, n reminder.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
