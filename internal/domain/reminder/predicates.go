package reminder

import (
	"time"

	"github.com/rpggio/timeclock/internal/domain/entry"
)

// EyeCareDue reports whether the eye-care reminder should fire. It fires only
// while clocked in, once the interval has elapsed since the later of the last
// reminder and the start of the current stretch of work.
func EyeCareDue(e *entry.TimeEntry, p *Preferences, now time.Time) bool {
	if e == nil || p == nil || !p.EyeCareEnabled || e.Status != entry.StatusClockedIn {
		return false
	}
	since := e.ActiveSince()
	if since.IsZero() {
		return false
	}
	if p.LastEyeCareReminder != nil && p.LastEyeCareReminder.After(since) {
		since = *p.LastEyeCareReminder
	}
	return now.Sub(since) >= NormalizePreferences(p).EyeCareInterval()
}

// ClockOutDue reports whether the forgot-to-clock-out reminder should fire:
// clocked in for at least the threshold and not yet shown for this session.
func ClockOutDue(e *entry.TimeEntry, p *Preferences, now time.Time) bool {
	if e == nil || p == nil || e.Status != entry.StatusClockedIn || e.ClockIn == nil {
		return false
	}
	if p.ClockOutReminderFor != nil && p.ClockOutReminderFor.Equal(*e.ClockIn) {
		return false
	}
	return now.Sub(*e.ClockIn) >= NormalizePreferences(p).ClockOutThreshold()
}

// clockOutRearmed reports whether the session the clock-out marker names has
// ended, so the marker should be cleared.
func clockOutRearmed(e *entry.TimeEntry, p *Preferences) bool {
	if p.ClockOutReminderFor == nil || e == nil {
		return false
	}
	return e.Status == entry.StatusClockedOut || e.Status == entry.StatusNotStarted
}
