package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	entry1 := &activity.ActivityEntry{
		ActivityType: activity.TypeClockIn,
		Summary:      "clocked in",
		CreatedAt:    nine,
	}
	entry2 := &activity.ActivityEntry{
		ActivityType: activity.TypeClockOut,
		Summary:      "clocked out",
		Details:      `{"total_hours":8}`,
		CreatedAt:    nine.Add(8 * time.Hour),
	}

	require.NoError(t, repo.Log(ctx, "u1", entry1))
	require.NoError(t, repo.Log(ctx, "u1", entry2))
	require.NotZero(t, entry1.ID)
	require.Equal(t, "u1", entry1.UserID)

	entries, err := repo.List(ctx, "u1", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Equal(t, `{"total_hours":8}`, entries[0].Details)
}

func TestActivityRepository_FiltersAndUserIsolation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	entryID := "e1"
	require.NoError(t, repo.Log(ctx, "u1", &activity.ActivityEntry{
		EntryID:      &entryID,
		ActivityType: activity.TypeStaleClosed,
		Summary:      "closed",
		CreatedAt:    nine,
	}))
	require.NoError(t, repo.Log(ctx, "u1", &activity.ActivityEntry{
		ActivityType: activity.TypeEyeCareReminder,
		Summary:      "look away",
		CreatedAt:    nine.Add(time.Hour),
	}))
	require.NoError(t, repo.Log(ctx, "u2", &activity.ActivityEntry{
		ActivityType: activity.TypeStaleClosed,
		Summary:      "other user",
		CreatedAt:    nine,
	}))

	byEntry, err := repo.List(ctx, "u1", activity.ListActivityOptions{EntryID: &entryID})
	require.NoError(t, err)
	require.Len(t, byEntry, 1)
	require.Equal(t, entryID, *byEntry[0].EntryID)

	typ := activity.TypeStaleClosed
	byType, err := repo.List(ctx, "u1", activity.ListActivityOptions{ActivityType: &typ})
	require.NoError(t, err)
	require.Len(t, byType, 1)

	since := nine.Add(30 * time.Minute)
	recent, err := repo.List(ctx, "u1", activity.ListActivityOptions{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, activity.TypeEyeCareReminder, recent[0].ActivityType)

	paged, err := repo.List(ctx, "u1", activity.ListActivityOptions{Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	require.Equal(t, activity.TypeStaleClosed, paged[0].ActivityType)

	other, err := repo.List(ctx, "u2", activity.ListActivityOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, other, 1)
}
