// Package hours derives worked time from a time entry. It is pure and safe to
// call on every display tick.
package hours

import (
	"math"
	"time"

	"github.com/rpggio/timeclock/internal/domain/entry"
)

// Breakdown splits an entry's elapsed time into worked and break components.
type Breakdown struct {
	Gross       time.Duration `json:"gross"`
	Lunch       time.Duration `json:"lunch"`
	ShortBreaks time.Duration `json:"short_breaks"`
	Ongoing     time.Duration `json:"ongoing"`
	Net         time.Duration `json:"net"`
}

// Breaks returns the total deduction applied to the gross span.
func (b Breakdown) Breaks() time.Duration {
	return b.Lunch + b.ShortBreaks + b.Ongoing
}

// Compute evaluates e as of now. A break that is still open is deducted up to
// now so it never counts as work.
func Compute(e *entry.TimeEntry, now time.Time) Breakdown {
	var b Breakdown
	if e == nil || e.ClockIn == nil {
		return b
	}

	end := now
	if e.ClockOut != nil {
		end = *e.ClockOut
	}
	b.Gross = span(*e.ClockIn, end)

	if e.LunchBreak != nil && e.LunchBreak.End != nil {
		b.Lunch = span(e.LunchBreak.Start, *e.LunchBreak.End)
	}
	for _, br := range e.ShortBreaks {
		if br.End != nil {
			b.ShortBreaks += span(br.Start, *br.End)
		}
	}

	switch e.Status {
	case entry.StatusOnLunch:
		if e.LunchBreak.IsOpen() {
			b.Ongoing = span(e.LunchBreak.Start, now)
		}
	case entry.StatusOnBreak:
		if open := e.OpenShortBreak(); open != nil {
			b.Ongoing = span(open.Start, now)
		}
	}

	b.Net = max(0, b.Gross-b.Breaks())
	return b
}

// NetWorkedHours returns worked hours for e as of now, never negative.
func NetWorkedHours(e *entry.TimeEntry, now time.Time) float64 {
	return Compute(e, now).Net.Hours()
}

// BreakTime returns the total break time deducted from e as of now.
func BreakTime(e *entry.TimeEntry, now time.Time) time.Duration {
	return Compute(e, now).Breaks()
}

// Round rounds hours to the given number of decimals for presentation.
func Round(h float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(h*p) / p
}

// span is end-start clamped at zero so clock skew cannot go negative.
func span(start, end time.Time) time.Duration {
	if end.Before(start) {
		return 0
	}
	return end.Sub(start)
}
