// Package report aggregates time entries into weekly and monthly summaries.
// Reports are read-only snapshots.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/hours"
	"github.com/rpggio/timeclock/internal/timecalc"
)

// ErrReportUnavailable indicates the entries could not be loaded. No partial
// report is returned alongside it.
var ErrReportUnavailable = errors.New("report unavailable")

// EntryReader loads a user's entries for a range of days.
type EntryReader interface {
	ListRange(ctx context.Context, userID, from, to string) ([]entry.TimeEntry, error)
}

// DayReport is one day's line in a report.
type DayReport struct {
	Date         string       `json:"date"`
	Weekday      string       `json:"weekday"`
	Status       entry.Status `json:"status"`
	Hours        float64      `json:"hours"`
	BreakMinutes float64      `json:"break_minutes"`
	ClockIn      *time.Time   `json:"clock_in,omitempty"`
	ClockOut     *time.Time   `json:"clock_out,omitempty"`
	AutoClosed   bool         `json:"auto_closed,omitempty"`
}

// WeeklyReport summarizes the days from WeekStart to WeekEnd inclusive.
type WeeklyReport struct {
	UserID     string      `json:"user_id"`
	WeekStart  string      `json:"week_start"`
	WeekEnd    string      `json:"week_end"`
	TotalHours float64     `json:"total_hours"`
	Days       []DayReport `json:"days"`
}

// MonthlyReport summarizes a calendar month, week by week.
type MonthlyReport struct {
	UserID            string         `json:"user_id"`
	Month             string         `json:"month"`
	TotalHours        float64        `json:"total_hours"`
	DaysWorked        int            `json:"days_worked"`
	AverageDailyHours float64        `json:"average_daily_hours"`
	Weeks             []WeeklyReport `json:"weeks"`
}

// Config tunes report boundaries.
type Config struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// Service builds reports.
type Service struct {
	entries   EntryReader
	clock     clock.Clock
	loc       *time.Location
	weekStart time.Weekday
	logger    *slog.Logger
}

// NewService creates a report service. The zero Config anchors weeks on
// Sunday in time.Local.
func NewService(entries EntryReader, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{entries: entries, clock: clk, loc: cfg.Location, weekStart: cfg.WeekStart, logger: logger}
}

// WeeklyReport reports the week containing weekStart.
func (s *Service) WeeklyReport(ctx context.Context, userID string, weekStart time.Time) (*WeeklyReport, error) {
	span := timecalc.WeekSpan(weekStart.In(s.loc), s.weekStart)
	byDate, err := s.load(ctx, userID, span)
	if err != nil {
		return nil, err
	}
	return s.week(userID, span, byDate, s.clock.Now()), nil
}

// MonthlyReport reports a calendar month.
func (s *Service) MonthlyReport(ctx context.Context, userID string, year int, month time.Month) (*MonthlyReport, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	byDate, err := s.load(ctx, userID, timecalc.MonthSpan(year, month, s.loc))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := &MonthlyReport{
		UserID: userID,
		Month:  fmt.Sprintf("%04d-%02d", year, int(month)),
		Weeks:  []WeeklyReport{},
	}
	for _, span := range timecalc.MonthWeeks(year, month, s.weekStart, s.loc) {
		w := s.week(userID, span, byDate, now)
		out.Weeks = append(out.Weeks, *w)
		out.TotalHours += w.TotalHours
		for _, d := range w.Days {
			if d.Hours > 0 {
				out.DaysWorked++
			}
		}
	}
	if out.DaysWorked > 0 {
		out.AverageDailyHours = out.TotalHours / float64(out.DaysWorked)
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, userID string, span timecalc.Span) (map[string]*entry.TimeEntry, error) {
	from, to := timecalc.DateKey(span.From), timecalc.DateKey(span.To)
	list, err := s.entries.ListRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("report entries unavailable", "user_id", userID, "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrReportUnavailable, err)
	}
	byDate := make(map[string]*entry.TimeEntry, len(list))
	for i := range list {
		byDate[list[i].Date] = &list[i]
	}
	return byDate, nil
}

// week computes one week slice. Missing days are reported as NOT_STARTED.
func (s *Service) week(userID string, span timecalc.Span, byDate map[string]*entry.TimeEntry, now time.Time) *WeeklyReport {
	out := &WeeklyReport{
		UserID:    userID,
		WeekStart: timecalc.DateKey(span.From),
		WeekEnd:   timecalc.DateKey(span.To),
		Days:      []DayReport{},
	}
	for _, day := range span.Days() {
		d := DayReport{
			Date:    timecalc.DateKey(day),
			Weekday: day.Weekday().String(),
			Status:  entry.StatusNotStarted,
		}
		if e, ok := byDate[d.Date]; ok {
			// an open entry counts up to now, but never past its own day
			at := now
			if eod := timecalc.EndOfDay(day); at.After(eod) {
				at = eod
			}
			b := hours.Compute(e, at)
			d.Status = e.Status
			d.Hours = b.Net.Hours()
			d.BreakMinutes = b.Breaks().Minutes()
			d.ClockIn = e.ClockIn
			d.ClockOut = e.ClockOut
			d.AutoClosed = e.AutoClosed
		}
		out.TotalHours += d.Hours
		out.Days = append(out.Days, d)
	}
	return out
}
