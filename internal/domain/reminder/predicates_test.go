package reminder_test

import (
	"testing"
	"time"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/stretchr/testify/require"
)

var nine = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func clockedInAt(t time.Time) *entry.TimeEntry {
	e := entry.New("e1", "u1", "2026-10-19")
	e.ClockIn = &t
	e.Status = entry.StatusClockedIn
	return e
}

func TestEyeCareDue_Interval(t *testing.T) {
	e := clockedInAt(nine)
	now := nine.Add(3 * time.Hour)
	p := reminder.DefaultPreferences("u1")

	last := now.Add(-19 * time.Minute)
	p.LastEyeCareReminder = &last
	require.False(t, reminder.EyeCareDue(e, p, now))

	last = now.Add(-20 * time.Minute)
	require.True(t, reminder.EyeCareDue(e, p, now))

	last = now.Add(-45 * time.Minute)
	require.True(t, reminder.EyeCareDue(e, p, now))
}

func TestEyeCareDue_OnlyWhileWorking(t *testing.T) {
	now := nine.Add(time.Hour)
	p := reminder.DefaultPreferences("u1")

	onBreak := clockedInAt(nine)
	onBreak.ShortBreaks = []entry.Break{{ID: "b", Start: nine.Add(30 * time.Minute)}}
	onBreak.Status = entry.StatusOnBreak
	require.False(t, reminder.EyeCareDue(onBreak, p, now))

	out := clockedInAt(nine)
	end := nine.Add(50 * time.Minute)
	out.ClockOut = &end
	out.Status = entry.StatusClockedOut
	require.False(t, reminder.EyeCareDue(out, p, now))

	require.False(t, reminder.EyeCareDue(entry.New("e", "u1", "2026-10-19"), p, now))

	p.EyeCareEnabled = false
	require.False(t, reminder.EyeCareDue(clockedInAt(nine), p, now))
}

func TestEyeCareDue_BreakResetsBaseline(t *testing.T) {
	e := clockedInAt(nine)
	breakEnd := nine.Add(time.Hour)
	e.ShortBreaks = []entry.Break{{ID: "b", Start: nine.Add(50 * time.Minute), End: &breakEnd}}
	p := reminder.DefaultPreferences("u1")

	require.False(t, reminder.EyeCareDue(e, p, breakEnd.Add(10*time.Minute)))
	require.True(t, reminder.EyeCareDue(e, p, breakEnd.Add(20*time.Minute)))
}

func TestEyeCareDue_ClampsInterval(t *testing.T) {
	e := clockedInAt(nine)
	p := reminder.DefaultPreferences("u1")
	p.EyeCareIntervalMinutes = 5

	require.False(t, reminder.EyeCareDue(e, p, nine.Add(10*time.Minute)), "interval never below 15 minutes")
	require.True(t, reminder.EyeCareDue(e, p, nine.Add(15*time.Minute)))
}

func TestClockOutDue(t *testing.T) {
	e := clockedInAt(nine)
	p := reminder.DefaultPreferences("u1")

	require.False(t, reminder.ClockOutDue(e, p, nine.Add(10*time.Hour-time.Second)))
	require.True(t, reminder.ClockOutDue(e, p, nine.Add(10*time.Hour)))

	p.ClockOutReminderFor = e.ClockIn
	require.False(t, reminder.ClockOutDue(e, p, nine.Add(12*time.Hour)), "shown once per session")

	next := clockedInAt(nine.AddDate(0, 0, 1))
	require.True(t, reminder.ClockOutDue(next, p, nine.AddDate(0, 0, 1).Add(11*time.Hour)), "a new session re-arms")

	onLunch := clockedInAt(nine)
	onLunch.LunchBreak = &entry.Break{ID: "l", Start: nine.Add(9 * time.Hour)}
	onLunch.Status = entry.StatusOnLunch
	require.False(t, reminder.ClockOutDue(onLunch, reminder.DefaultPreferences("u1"), nine.Add(11*time.Hour)))
}

func TestNormalizePreferences(t *testing.T) {
	got := reminder.NormalizePreferences(&reminder.Preferences{UserID: "u1", EyeCareIntervalMinutes: 90})
	require.Equal(t, 60, got.EyeCareIntervalMinutes)
	require.Equal(t, 10.0, got.ClockOutThresholdHours)

	got = reminder.NormalizePreferences(&reminder.Preferences{UserID: "u1"})
	require.Equal(t, 20, got.EyeCareIntervalMinutes)
	require.Nil(t, reminder.NormalizePreferences(nil))
}

func TestSnoozer(t *testing.T) {
	s := reminder.NewSnoozer()
	require.False(t, s.Suppressed("u1", reminder.KindEyeCare, nine))

	s.Snooze("u1", nine.Add(30*time.Minute))
	require.True(t, s.Suppressed("u1", reminder.KindEyeCare, nine))
	require.True(t, s.Suppressed("u1", reminder.KindClockOut, nine.Add(29*time.Minute)))
	require.False(t, s.Suppressed("u2", reminder.KindEyeCare, nine))

	require.False(t, s.Suppressed("u1", reminder.KindEyeCare, nine.Add(30*time.Minute)))
	_, ok := s.Until("u1")
	require.False(t, ok, "expired snooze is dropped")

	s.Snooze("u1", nine.Add(time.Hour))
	s.Resume("u1")
	require.False(t, s.Suppressed("u1", reminder.KindEyeCare, nine))
}
