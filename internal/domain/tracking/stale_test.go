package tracking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/tracking"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/rpggio/timeclock/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// leaveOpen clocks u1 in on Sunday and starts lunch, then moves to Monday.
func leaveOpen(t *testing.T, h *harness) {
	t.Helper()
	ctx := context.Background()
	sunday := monday9.AddDate(0, 0, -1)
	h.clock.Set(sunday)
	_, err := h.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)
	h.clock.Set(sunday.Add(3 * time.Hour))
	_, err = h.svc.StartLunchBreak(ctx, "u1")
	require.NoError(t, err)
	h.clock.Set(monday9)
}

func TestAutoCloseStaleEntries_EndOfDay(t *testing.T) {
	h := newHarness(t, tracking.Config{})
	ctx := context.Background()
	leaveOpen(t, h)
	sweptAt := monday9.Add(5 * time.Minute)
	h.clock.Set(sweptAt)

	res, err := h.svc.AutoCloseStaleEntries(ctx, monday9)
	require.NoError(t, err)
	require.Empty(t, res.Failures)
	require.Len(t, res.Closed, 1)

	staleType := activity.TypeStaleClosed
	logged, err := h.activities.List(ctx, "u1", activity.ListActivityOptions{ActivityType: &staleType, Limit: 10})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.True(t, logged[0].CreatedAt.Equal(sweptAt), "audit time comes from the service clock")

	closed := res.Closed[0]
	require.Equal(t, "2026-10-18", closed.Date)
	require.Equal(t, entry.StatusClockedOut, closed.Status)
	require.True(t, closed.AutoClosed)
	endOfDay := time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC)
	require.True(t, closed.ClockOut.Equal(endOfDay))
	require.True(t, closed.LunchBreak.End.Equal(endOfDay), "open break closes with the session")
	require.InDelta(t, 3.0, *closed.TotalHours, 1e-9)
	require.NoError(t, entry.Validate(&closed))

	again, err := h.svc.AutoCloseStaleEntries(ctx, monday9.Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, again.Closed, "closed entries are never touched again")

	stored, err := h.entries.Get(ctx, "u1", "2026-10-18")
	require.NoError(t, err)
	require.Equal(t, closed.Version, stored.Version)
}

func TestAutoCloseStaleEntries_TodayIsNotStale(t *testing.T) {
	h := newHarness(t, tracking.Config{})
	ctx := context.Background()

	_, err := h.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)
	res, err := h.svc.AutoCloseStaleEntries(ctx, monday9.Add(14*time.Hour))
	require.NoError(t, err)
	require.Empty(t, res.Closed)
}

func TestAutoCloseStaleEntries_Policies(t *testing.T) {
	tests := []struct {
		name   string
		cfg    tracking.Config
		closes time.Time
		hours  float64
	}{
		{
			name:   "last activity",
			cfg:    tracking.Config{StalePolicy: tracking.PolicyLastActivity},
			closes: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
			hours:  3,
		},
		{
			name:   "max shift",
			cfg:    tracking.Config{StalePolicy: tracking.PolicyMaxShift, MaxShift: 8 * time.Hour},
			closes: time.Date(2026, 10, 18, 17, 0, 0, 0, time.UTC),
			hours:  3,
		},
		{
			name:   "max shift capped at end of day",
			cfg:    tracking.Config{StalePolicy: tracking.PolicyMaxShift, MaxShift: 20 * time.Hour},
			closes: time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC),
			hours:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.cfg)
			leaveOpen(t, h)

			res, err := h.svc.AutoCloseStaleEntries(context.Background(), monday9)
			require.NoError(t, err)
			require.Len(t, res.Closed, 1)
			require.True(t, res.Closed[0].ClockOut.Equal(tt.closes), "closed at %s", res.Closed[0].ClockOut)
			require.InDelta(t, tt.hours, *res.Closed[0].TotalHours, 1e-9)
		})
	}
}

func TestClockInClosesOwnStaleEntries(t *testing.T) {
	h := newHarness(t, tracking.Config{})
	ctx := context.Background()
	leaveOpen(t, h)

	e, err := h.svc.ClockIn(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "2026-10-19", e.Date)

	open, err := h.entries.ListOpen(ctx, repository.ListOpenOptions{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, open, 1, "only today's session stays open")
	require.Equal(t, "2026-10-19", open[0].Date)
}

func TestAutoCloseStaleEntries_FailuresAreReported(t *testing.T) {
	ctx := context.Background()
	in := monday9.AddDate(0, 0, -1)
	stale := entry.New("e1", "u1", "2026-10-18")
	stale.ClockIn = &in
	stale.Status = entry.StatusClockedIn
	stale.Version = 2

	repo := &mocks.EntryRepository{}
	repo.On("ListOpen", ctx, repository.ListOpenOptions{Before: "2026-10-19"}).Return([]entry.TimeEntry{*stale}, nil)
	repo.On("Upsert", ctx, mock.AnythingOfType("*entry.TimeEntry"), int64(2)).Return(repository.ErrConflict)

	svc := tracking.NewService(repo, clock.NewManual(monday9), tracking.Config{Location: time.UTC}, nil, nil)
	res, err := svc.AutoCloseStaleEntries(ctx, monday9)
	require.NoError(t, err)
	require.Empty(t, res.Closed)
	require.Len(t, res.Failures, 1)
	require.ErrorIs(t, res.Failures[0], tracking.ErrStaleEntryCloseFailure)
	require.ErrorIs(t, res.Failures[0], repository.ErrConflict)
	require.Equal(t, "2026-10-18", res.Failures[0].Date)
}

func TestAutoCloseStaleEntries_ListFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	repo.On("ListOpen", ctx, mock.Anything).Return(nil, errors.New("database is locked"))

	svc := tracking.NewService(repo, clock.NewManual(monday9), tracking.Config{Location: time.UTC}, nil, nil)
	_, err := svc.AutoCloseStaleEntries(ctx, monday9)
	require.ErrorIs(t, err, tracking.ErrStoreUnavailable)
}

func TestAutoCloseStaleEntries_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := monday9.AddDate(0, 0, -1)
	stale := entry.New("e1", "u1", "2026-10-18")
	stale.ClockIn = &in
	stale.Status = entry.StatusClockedIn
	stale.Version = 1

	repo := &mocks.EntryRepository{}
	repo.On("ListOpen", ctx, mock.Anything).Return([]entry.TimeEntry{*stale}, nil)

	svc := tracking.NewService(repo, clock.NewManual(monday9), tracking.Config{Location: time.UTC}, nil, nil)
	_, err := svc.AutoCloseStaleEntries(ctx, monday9)
	require.ErrorIs(t, err, context.Canceled)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestParseStalePolicy(t *testing.T) {
	p, err := tracking.ParseStalePolicy("")
	require.NoError(t, err)
	require.Equal(t, tracking.PolicyEndOfDay, p)

	p, err = tracking.ParseStalePolicy(" Max_Shift ")
	require.NoError(t, err)
	require.Equal(t, tracking.PolicyMaxShift, p)

	_, err = tracking.ParseStalePolicy("whenever")
	require.ErrorIs(t, err, tracking.ErrInvalidInput)
}
