package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()
	userID := "user1"

	repo := &mocks.ActivityRepository{}
	entryID := "entry1"
	entry := &activity.ActivityEntry{
		EntryID:      &entryID,
		ActivityType: activity.TypeClockIn,
		Summary:      "clocked in",
	}

	repo.On("Log", ctx, userID, entry).Return(nil)
	repo.On("List", ctx, userID, activity.ListActivityOptions{EntryID: &entryID, Limit: 50}).Return([]activity.ActivityEntry{*entry}, nil)

	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	svc := activity.NewService(repo, clock.NewManual(at), nil)
	require.NoError(t, svc.LogActivity(ctx, userID, entry))
	require.Equal(t, userID, entry.UserID)
	require.Equal(t, at, entry.CreatedAt, "stamped from the service clock")

	got, err := svc.GetRecentActivity(ctx, userID, activity.ListActivityOptions{EntryID: &entryID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_InvalidInput(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil, nil)
	ctx := context.Background()

	require.ErrorIs(t, svc.LogActivity(ctx, "user1", nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, "", &activity.ActivityEntry{ActivityType: activity.TypeClockIn}), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, "user1", &activity.ActivityEntry{}), activity.ErrInvalidInput)

	_, err := svc.GetRecentActivity(ctx, " ", activity.ListActivityOptions{})
	require.ErrorIs(t, err, activity.ErrInvalidInput)
}

func TestActivityService_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("List", ctx, "user1", activity.ListActivityOptions{Limit: 500}).Return([]activity.ActivityEntry{}, nil)

	svc := activity.NewService(repo, nil, nil)
	_, err := svc.GetRecentActivity(ctx, "user1", activity.ListActivityOptions{Limit: 10_000, Offset: -3})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestActivityService_RecordSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, "user1", mock.Anything).Return(errors.New("disk full"))

	svc := activity.NewService(repo, nil, nil)
	require.NotPanics(t, func() {
		svc.Record(ctx, "user1", &activity.ActivityEntry{ActivityType: activity.TypeClockOut})
	})

	var nilSvc *activity.Service
	require.NotPanics(t, func() {
		nilSvc.Record(ctx, "user1", &activity.ActivityEntry{ActivityType: activity.TypeClockOut})
	})
	repo.AssertExpectations(t)
}

func TestActivityService_KeepsGivenTimestamp(t *testing.T) {
	ctx := context.Background()
	given := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, "user1", mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.CreatedAt.Equal(given)
	})).Return(nil)

	svc := activity.NewService(repo, clock.NewManual(given.Add(time.Hour)), nil)
	require.NoError(t, svc.LogActivity(ctx, "user1", &activity.ActivityEntry{ActivityType: activity.TypeStaleClosed, CreatedAt: given}))
	repo.AssertExpectations(t)
}
