package tracking

import (
	"time"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/hours"
	"github.com/rpggio/timeclock/internal/timecalc"
)

// DaySummary is an entry together with its derived hours as of a given
// instant. It is what clients display.
type DaySummary struct {
	Entry        *entry.TimeEntry `json:"entry"`
	Status       entry.Status     `json:"status"`
	NetHours     float64          `json:"net_hours"`
	BreakMinutes float64          `json:"break_minutes"`
	Worked       string           `json:"worked"`
	AsOf         time.Time        `json:"as_of"`
}

// Summarize derives the day summary of e at now.
func Summarize(e *entry.TimeEntry, now time.Time) DaySummary {
	b := hours.Compute(e, now)
	return DaySummary{
		Entry:        e,
		Status:       e.Status,
		NetHours:     hours.Round(b.Net.Hours(), 2),
		BreakMinutes: hours.Round(b.Breaks().Minutes(), 1),
		Worked:       timecalc.FormatDurationHHMMSS(int64(b.Net / time.Second)),
		AsOf:         now,
	}
}
