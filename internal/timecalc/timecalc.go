package timecalc

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of calendar-day keys, e.g. "2026-10-19".
const DateLayout = "2006-01-02"

// MonthLayout is the layout of month keys, e.g. "2026-10".
const MonthLayout = "2006-01"

// DateKey returns the calendar-day key of t in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a calendar-day key into midnight of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// NextDay returns midnight of the following day.
func NextDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekStart returns midnight of the first day of the week containing t,
// where weeks begin on first.
func WeekStart(t time.Time, first time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(first) + 7) % 7
	return StartOfDay(t.AddDate(0, 0, -offset))
}

// Span is an inclusive range of calendar days.
type Span struct {
	From time.Time
	To   time.Time
}

// Days returns midnight of every day in the span.
func (s Span) Days() []time.Time {
	var days []time.Time
	for d := StartOfDay(s.From); !d.After(s.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekSpan returns the seven days starting at the week anchor of t.
func WeekSpan(t time.Time, first time.Weekday) Span {
	from := WeekStart(t, first)
	return Span{From: from, To: from.AddDate(0, 0, 6)}
}

// MonthSpan returns the first and last day of the month.
func MonthSpan(year int, month time.Month, loc *time.Location) Span {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Span{From: from, To: from.AddDate(0, 1, -1)}
}

// MonthWeeks partitions a month into week slices anchored on first. The first
// and last slices are clipped to the month.
func MonthWeeks(year int, month time.Month, first time.Weekday, loc *time.Location) []Span {
	m := MonthSpan(year, month, loc)
	var weeks []Span
	for from := m.From; !from.After(m.To); {
		to := WeekStart(from, first).AddDate(0, 0, 6)
		if to.After(m.To) {
			to = m.To
		}
		weeks = append(weeks, Span{From: from, To: to})
		from = to.AddDate(0, 0, 1)
	}
	return weeks
}

// ParseWeekday parses an English weekday name ("sunday", "Mon").
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatHours formats fractional hours, e.g. 7.5 -> "7h 30m".
func FormatHours(h float64) string {
	return FormatDuration(int64(h*3600 + 0.5))
}
