package tracking

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/timecalc"
)

// StalePolicy decides when a forgotten session is considered to have ended.
type StalePolicy string

const (
	// PolicyEndOfDay closes at 23:59:59 of the entry's day.
	PolicyEndOfDay StalePolicy = "end_of_day"
	// PolicyLastActivity closes at the last recorded instant on the entry.
	PolicyLastActivity StalePolicy = "last_activity"
	// PolicyMaxShift closes MaxShift after clock-in, capped at the end of the day.
	PolicyMaxShift StalePolicy = "max_shift"
)

// DefaultMaxShift is the shift length used by PolicyMaxShift when unset.
const DefaultMaxShift = 10 * time.Hour

// ParseStalePolicy parses a policy name; empty selects PolicyEndOfDay.
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch p := StalePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyEndOfDay, nil
	case PolicyEndOfDay, PolicyLastActivity, PolicyMaxShift:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown stale close policy %q", ErrInvalidInput, s)
	}
}

// closeInstant returns when the policy says e's session ended. The result is
// never before the clock-in.
func (s *Service) closeInstant(e *entry.TimeEntry) (time.Time, error) {
	day, err := timecalc.ParseDate(e.Date, s.loc)
	if err != nil {
		return time.Time{}, err
	}
	endOfDay := timecalc.EndOfDay(day)

	var at time.Time
	switch s.policy {
	case PolicyLastActivity:
		at = e.LastActivity()
	case PolicyMaxShift:
		at = e.ClockIn.Add(s.maxShift)
		if at.After(endOfDay) {
			at = endOfDay
		}
	default:
		at = endOfDay
	}
	return notBefore(at, *e.ClockIn), nil
}

func notBefore(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}
