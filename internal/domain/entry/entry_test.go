package entry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/stretchr/testify/require"
)

var nine = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := nine.Add(d)
	return &t
}

func clockedIn() *entry.TimeEntry {
	e := entry.New("e1", "u1", "2026-10-19")
	e.ClockIn = at(0)
	e.Status = entry.StatusClockedIn
	return e
}

func TestValidateTransition_Table(t *testing.T) {
	onLunch := clockedIn()
	onLunch.LunchBreak = &entry.Break{ID: "l", Start: *at(3 * time.Hour)}
	onLunch.Status = entry.StatusOnLunch

	onBreak := clockedIn()
	onBreak.ShortBreaks = []entry.Break{{ID: "b", Start: *at(time.Hour)}}
	onBreak.Status = entry.StatusOnBreak

	lunchDone := clockedIn()
	lunchDone.LunchBreak = &entry.Break{ID: "l", Start: *at(3 * time.Hour), End: at(3*time.Hour + 30*time.Minute)}

	out := clockedIn()
	out.ClockOut = at(8 * time.Hour)
	out.Status = entry.StatusClockedOut

	notStarted := entry.New("e0", "u1", "2026-10-19")

	tests := []struct {
		name   string
		entry  *entry.TimeEntry
		action entry.Action
		want   entry.Status
		err    error
	}{
		{"clock in fresh day", notStarted, entry.ActionClockIn, entry.StatusClockedIn, nil},
		{"clock in twice", clockedIn(), entry.ActionClockIn, "", entry.ErrInvalidTransition},
		{"clock in after clock out same day", out, entry.ActionClockIn, "", entry.ErrInvalidTransition},
		{"clock out", clockedIn(), entry.ActionClockOut, entry.StatusClockedOut, nil},
		{"clock out not started", notStarted, entry.ActionClockOut, "", entry.ErrNoActiveSession},
		{"clock out twice", out, entry.ActionClockOut, "", entry.ErrNoActiveSession},
		{"clock out on lunch", onLunch, entry.ActionClockOut, "", entry.ErrInvalidTransition},
		{"clock out on break", onBreak, entry.ActionClockOut, "", entry.ErrInvalidTransition},
		{"start lunch", clockedIn(), entry.ActionStartLunch, entry.StatusOnLunch, nil},
		{"start lunch twice a day", lunchDone, entry.ActionStartLunch, "", entry.ErrLunchAlreadyTaken},
		{"start lunch while on break", onBreak, entry.ActionStartLunch, "", entry.ErrAlreadyOnBreak},
		{"start lunch not started", notStarted, entry.ActionStartLunch, "", entry.ErrInvalidTransition},
		{"start short break", lunchDone, entry.ActionStartShortBreak, entry.StatusOnBreak, nil},
		{"start short break on lunch", onLunch, entry.ActionStartShortBreak, "", entry.ErrAlreadyOnBreak},
		{"start short break clocked out", out, entry.ActionStartShortBreak, "", entry.ErrInvalidTransition},
		{"end lunch", onLunch, entry.ActionEndLunch, entry.StatusClockedIn, nil},
		{"end lunch while on short break", onBreak, entry.ActionEndLunch, "", entry.ErrInvalidTransition},
		{"end lunch nothing open", clockedIn(), entry.ActionEndLunch, "", entry.ErrNoActiveSession},
		{"end short break", onBreak, entry.ActionEndShortBreak, entry.StatusClockedIn, nil},
		{"end short break on lunch", onLunch, entry.ActionEndShortBreak, "", entry.ErrInvalidTransition},
		{"end short break not started", notStarted, entry.ActionEndShortBreak, "", entry.ErrNoActiveSession},
		{"unknown action", clockedIn(), entry.Action("dance"), "", entry.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := entry.ValidateTransition(tt.entry, tt.action)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.Equal(t, tt.entry.Status, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, entry.Validate(clockedIn()))
	require.NoError(t, entry.Validate(entry.New("e", "u", "2026-10-19")))

	badOut := clockedIn()
	badOut.ClockOut = at(-time.Hour)
	badOut.Status = entry.StatusClockedOut
	require.ErrorIs(t, entry.Validate(badOut), entry.ErrInvalidEntry)

	twoOpen := clockedIn()
	twoOpen.LunchBreak = &entry.Break{ID: "l", Start: *at(time.Hour)}
	twoOpen.ShortBreaks = []entry.Break{{ID: "b", Start: *at(2 * time.Hour)}}
	twoOpen.Status = entry.StatusOnBreak
	require.ErrorIs(t, entry.Validate(twoOpen), entry.ErrInvalidEntry)

	backwards := clockedIn()
	backwards.ShortBreaks = []entry.Break{{ID: "b", Start: *at(2 * time.Hour), End: at(time.Hour)}}
	require.ErrorIs(t, entry.Validate(backwards), entry.ErrInvalidEntry)

	mismatch := clockedIn()
	mismatch.Status = entry.StatusOnLunch
	require.ErrorIs(t, entry.Validate(mismatch), entry.ErrInvalidEntry)

	negative := clockedIn()
	h := -1.0
	negative.TotalHours = &h
	require.ErrorIs(t, entry.Validate(negative), entry.ErrInvalidEntry)

	noUser := clockedIn()
	noUser.UserID = " "
	require.True(t, errors.Is(entry.Validate(noUser), entry.ErrInvalidEntry))
}

func TestClone_IsDeep(t *testing.T) {
	e := clockedIn()
	e.LunchBreak = &entry.Break{ID: "l", Start: *at(3 * time.Hour), End: at(4 * time.Hour)}
	e.ShortBreaks = []entry.Break{{ID: "b", Start: *at(time.Hour), End: at(time.Hour + 10*time.Minute)}}
	total := 7.0
	e.TotalHours = &total

	c := e.Clone()
	*c.ClockIn = nine.Add(time.Minute)
	*c.LunchBreak.End = nine
	c.ShortBreaks[0].ID = "changed"
	*c.TotalHours = 1

	require.True(t, e.ClockIn.Equal(nine))
	require.True(t, e.LunchBreak.End.Equal(nine.Add(4*time.Hour)))
	require.Equal(t, "b", e.ShortBreaks[0].ID)
	require.Equal(t, 7.0, *e.TotalHours)
	require.Nil(t, (*entry.TimeEntry)(nil).Clone())
}

func TestActiveSinceAndLastActivity(t *testing.T) {
	e := clockedIn()
	require.True(t, e.ActiveSince().Equal(nine))

	e.ShortBreaks = []entry.Break{{ID: "b", Start: *at(time.Hour), End: at(time.Hour + 15*time.Minute)}}
	e.LunchBreak = &entry.Break{ID: "l", Start: *at(30 * time.Minute), End: at(45 * time.Minute)}
	require.True(t, e.ActiveSince().Equal(nine.Add(time.Hour+15*time.Minute)))
	require.True(t, e.LastActivity().Equal(nine.Add(time.Hour+15*time.Minute)))

	e.ShortBreaks = append(e.ShortBreaks, entry.Break{ID: "c", Start: *at(2 * time.Hour)})
	require.NotNil(t, e.OpenShortBreak())
	require.Equal(t, "c", e.OpenBreak().ID)
	require.True(t, e.LastActivity().Equal(nine.Add(2*time.Hour)))

	require.True(t, entry.New("x", "u", "d").ActiveSince().IsZero())
}

func TestChangeAffects(t *testing.T) {
	require.True(t, entry.Change{UserID: "u1"}.Affects("u1"))
	require.False(t, entry.Change{UserID: "u2"}.Affects("u1"))
	require.True(t, entry.Change{External: true}.Affects("u1"))
	require.True(t, entry.Change{}.Affects("u1"))
}
