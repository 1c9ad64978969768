package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/stretchr/testify/require"
)

var nine = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newOpenEntry(id, userID, date string) *entry.TimeEntry {
	e := entry.New(id, userID, date)
	e.ClockIn = ptr(nine)
	e.Status = entry.StatusClockedIn
	e.LastModified = nine
	return e
}

func TestEntryRepository_InsertGetUpdate(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	_, err := repo.Get(ctx, "u1", "2026-10-19")
	require.ErrorIs(t, err, repository.ErrNotFound)

	e := newOpenEntry("e1", "u1", "2026-10-19")
	require.NoError(t, repo.Upsert(ctx, e, 0))
	require.Equal(t, int64(1), e.Version)

	got, err := repo.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	require.Equal(t, "e1", got.ID)
	require.Equal(t, entry.StatusClockedIn, got.Status)
	require.True(t, got.ClockIn.Equal(nine))
	require.Nil(t, got.ClockOut)
	require.Nil(t, got.LunchBreak)
	require.Empty(t, got.ShortBreaks)
	require.Equal(t, int64(1), got.Version)

	got.LunchBreak = &entry.Break{ID: "l1", Start: nine.Add(3 * time.Hour), End: ptr(nine.Add(3*time.Hour + 30*time.Minute)), DurationSeconds: ptr(int64(1800))}
	got.ShortBreaks = append(got.ShortBreaks, entry.Break{ID: "b1", Start: nine.Add(time.Hour)})
	got.Status = entry.StatusOnBreak
	require.NoError(t, repo.Upsert(ctx, got, 1))
	require.Equal(t, int64(2), got.Version)

	again, err := repo.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	require.Equal(t, entry.StatusOnBreak, again.Status)
	require.NotNil(t, again.LunchBreak)
	require.Equal(t, int64(1800), *again.LunchBreak.DurationSeconds)
	require.Len(t, again.ShortBreaks, 1)
	require.Nil(t, again.ShortBreaks[0].End)
	require.NotNil(t, again.OpenShortBreak())
}

func TestEntryRepository_OptimisticConcurrency(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	require.NoError(t, repo.Upsert(ctx, newOpenEntry("e1", "u1", "2026-10-19"), 0))

	// a second insert for the same day loses
	require.ErrorIs(t, repo.Upsert(ctx, newOpenEntry("e2", "u1", "2026-10-19"), 0), repository.ErrConflict)

	first, err := repo.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)

	first.Status = entry.StatusClockedOut
	first.ClockOut = ptr(nine.Add(8 * time.Hour))
	first.TotalHours = ptr(8.0)
	require.NoError(t, repo.Upsert(ctx, first, 1))

	second.Status = entry.StatusOnLunch
	second.LunchBreak = &entry.Break{ID: "l", Start: nine.Add(time.Hour)}
	require.ErrorIs(t, repo.Upsert(ctx, second, 1), repository.ErrConflict)
	require.Equal(t, int64(1), second.Version, "failed write must not bump the caller's version")

	stored, err := repo.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	require.Equal(t, entry.StatusClockedOut, stored.Status)
	require.Equal(t, 8.0, *stored.TotalHours)

	missing := newOpenEntry("e9", "u1", "2026-10-01")
	require.ErrorIs(t, repo.Upsert(ctx, missing, 3), repository.ErrNotFound)
}

func TestEntryRepository_ListRangeAndOpen(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	for i, date := range []string{"2026-10-18", "2026-10-19", "2026-10-20", "2026-10-25"} {
		e := newOpenEntry("u1-"+date, "u1", date)
		if i%2 == 1 {
			e.Status = entry.StatusClockedOut
			e.ClockOut = ptr(nine.Add(time.Hour))
		}
		require.NoError(t, repo.Upsert(ctx, e, 0))
	}
	require.NoError(t, repo.Upsert(ctx, newOpenEntry("u2-1", "u2", "2026-10-17"), 0))

	week, err := repo.ListRange(ctx, "u1", "2026-10-18", "2026-10-24")
	require.NoError(t, err)
	require.Len(t, week, 3)
	require.Equal(t, "2026-10-18", week[0].Date)
	require.Equal(t, "2026-10-20", week[2].Date)

	empty, err := repo.ListRange(ctx, "u3", "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	open, err := repo.ListOpen(ctx, repository.ListOpenOptions{Before: "2026-10-20"})
	require.NoError(t, err)
	require.Len(t, open, 2)
	require.Equal(t, "u2", open[0].UserID)
	require.Equal(t, "2026-10-18", open[1].Date)

	mine, err := repo.ListOpen(ctx, repository.ListOpenOptions{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	limited, err := repo.ListOpen(ctx, repository.ListOpenOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestEntryRepository_PublishesChanges(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	var got []entry.Change
	unsubscribe := repo.Subscribe(func(c entry.Change) { got = append(got, c) })

	e := newOpenEntry("e1", "u1", "2026-10-19")
	require.NoError(t, repo.Upsert(ctx, e, 0))
	require.ErrorIs(t, repo.Upsert(ctx, newOpenEntry("e2", "u1", "2026-10-19"), 0), repository.ErrConflict)
	unsubscribe()
	require.NoError(t, repo.Upsert(ctx, e, 1))

	require.Equal(t, []entry.Change{{UserID: "u1", Date: "2026-10-19", Version: 1}}, got)
}
