package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/hours"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/rpggio/timeclock/internal/timecalc"
)

// SweepResult reports what a stale sweep did.
type SweepResult struct {
	Closed   []entry.TimeEntry  `json:"closed"`
	Failures []*StaleCloseError `json:"-"`
}

// AutoCloseStaleEntries closes every session still open after its calendar
// day ended, as of asOf. Entries that fail are reported and left for the next
// sweep. Closed entries are never touched again, so repeated sweeps are safe.
func (s *Service) AutoCloseStaleEntries(ctx context.Context, asOf time.Time) (SweepResult, error) {
	return s.sweep(ctx, repository.ListOpenOptions{Before: timecalc.DateKey(asOf.In(s.loc))})
}

// closeOwnStale closes the user's open sessions from days before today.
// Individual failures are logged; only a failed listing stops the caller.
func (s *Service) closeOwnStale(ctx context.Context, userID string) error {
	res, err := s.sweep(ctx, repository.ListOpenOptions{UserID: userID, Before: timecalc.DateKey(s.Now())})
	if err != nil {
		return err
	}
	for _, f := range res.Failures {
		s.logger.Warn("stale entry left open before clock-in", "user_id", userID, "date", f.Date, "error", f.Err)
	}
	return nil
}

func (s *Service) sweep(ctx context.Context, opts repository.ListOpenOptions) (SweepResult, error) {
	var res SweepResult
	open, err := s.entries.ListOpen(ctx, opts)
	if err != nil {
		return res, storeErr("listing open entries", err)
	}

	for i := range open {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		stored := &open[i]
		closed, err := s.closeStale(ctx, stored)
		if err != nil {
			failure := &StaleCloseError{UserID: stored.UserID, Date: stored.Date, EntryID: stored.ID, Err: err}
			res.Failures = append(res.Failures, failure)
			s.logger.Error("stale entry close failed", "user_id", stored.UserID, "date", stored.Date, "error", err)
			s.activities.Record(ctx, stored.UserID, &activity.ActivityEntry{
				EntryID:      &stored.ID,
				ActivityType: activity.TypeStaleCloseFailed,
				Summary:      fmt.Sprintf("could not close open entry for %s", stored.Date),
				Details:      err.Error(),
				CreatedAt:    s.clock.Now(),
			})
			continue
		}
		res.Closed = append(res.Closed, *closed)
		s.logger.Info("stale entry closed", "user_id", closed.UserID, "date", closed.Date, "policy", s.policy, "total_hours", *closed.TotalHours)
		s.activities.Record(ctx, closed.UserID, &activity.ActivityEntry{
			EntryID:      &closed.ID,
			ActivityType: activity.TypeStaleClosed,
			Summary:      fmt.Sprintf("closed forgotten session for %s at %s", closed.Date, closed.ClockOut.Format(time.Kitchen)),
			Details:      fmt.Sprintf(`{"policy":%q}`, s.policy),
			CreatedAt:    s.clock.Now(),
		})
	}
	return res, nil
}

// closeStale forces stored closed at the instant chosen by the stale policy.
// Any open break ends at the same instant.
func (s *Service) closeStale(ctx context.Context, stored *entry.TimeEntry) (*entry.TimeEntry, error) {
	if !stored.IsOpen() || stored.ClockIn == nil {
		return nil, fmt.Errorf("%w: entry is not open", entry.ErrInvalidEntry)
	}
	at, err := s.closeInstant(stored)
	if err != nil {
		return nil, err
	}

	updated := stored.Clone()
	if b := updated.OpenBreak(); b != nil {
		closeBreak(b, at)
	}
	updated.ClockOut = &at
	updated.Status = entry.StatusClockedOut
	updated.AutoClosed = true
	total := hours.NetWorkedHours(updated, at)
	updated.TotalHours = &total
	updated.LastModified = s.Now()
	if err := entry.Validate(updated); err != nil {
		return nil, err
	}

	if err := s.entries.Upsert(ctx, updated, stored.Version); err != nil {
		return nil, fmt.Errorf("saving closed entry: %w", err)
	}
	s.remember(updated)
	return updated, nil
}
