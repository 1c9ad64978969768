package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/timeclock/internal/app"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/tracking"
	"github.com/spf13/cobra"
)

type transitionFunc func(ctx context.Context, a *app.App, userID string) (*entry.TimeEntry, error)

func transitionClockIn(ctx context.Context, a *app.App, userID string) (*entry.TimeEntry, error) {
	return a.Tracking.ClockIn(ctx, userID)
}

func transitionClockOut(ctx context.Context, a *app.App, userID string) (*entry.TimeEntry, error) {
	return a.Tracking.ClockOut(ctx, userID)
}

func transitionStartLunch(ctx context.Context, a *app.App, userID string) (*entry.TimeEntry, error) {
	return a.Tracking.StartLunchBreak(ctx, userID)
}

func transitionEndLunch(ctx context.Context, a *app.App, userID string) (*entry.TimeEntry, error) {
	return a.Tracking.EndLunchBreak(ctx, userID)
}

func transitionStartBreak(ctx context.Context, a *app.App, userID string) (*entry.TimeEntry, error) {
	return a.Tracking.StartShortBreak(ctx, userID)
}

func transitionEndBreak(ctx context.Context, a *app.App, userID string) (*entry.TimeEntry, error) {
	return a.Tracking.EndShortBreak(ctx, userID)
}

func (r *runner) transitionCmd(use, short string, fn transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), false, func(a *app.App, userID string) error {
				e, err := fn(cmd.Context(), a, userID)
				if err != nil {
					return err
				}
				return r.printSummary(tracking.Summarize(e, a.Tracking.Now()), a.Tracking.Location())
			})
		},
	}
}

func (r *runner) breakGroup(use, short string, start, end transitionFunc) *cobra.Command {
	group := &cobra.Command{
		Use:   use,
		Short: short,
	}
	group.AddCommand(
		r.transitionCmd("start", "Start the "+use, start),
		r.transitionCmd("end", "End the "+use, end),
	)
	return group
}

func (r *runner) statusCmd() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's status and worked time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return r.withApp(ctx, watch, func(a *app.App, userID string) error {
				if !watch {
					e, err := a.Tracking.Today(ctx, userID)
					if err != nil {
						return err
					}
					return r.printSummary(tracking.Summarize(e, a.Tracking.Now()), a.Tracking.Location())
				}
				return r.watchStatus(ctx, a, userID, interval)
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing and deliver reminders until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "refresh interval with --watch")
	return cmd
}

// watchStatus redraws the status line every interval. The entry comes from
// the snapshot cache, which store changes invalidate.
func (r *runner) watchStatus(ctx context.Context, a *app.App, userID string, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		e, err := a.Tracking.Snapshot(ctx, userID)
		if err != nil {
			return err
		}
		s := tracking.Summarize(e, a.Tracking.Now())
		fmt.Fprintf(r.env.Out, "\r%-12s worked %s  breaks %5.1f min ", s.Status, s.Worked, s.BreakMinutes)

		select {
		case <-ctx.Done():
			fmt.Fprintln(r.env.Out)
			return nil
		case <-ticker.C:
		}
	}
}

func (r *runner) printSummary(s tracking.DaySummary, loc *time.Location) error {
	if r.flags.json {
		return r.printJSON(s)
	}
	out := r.env.Out
	e := s.Entry
	fmt.Fprintf(out, "%s  %s\n", e.Date, s.Status)
	if e.ClockIn != nil {
		fmt.Fprintf(out, "  clock in:  %s\n", e.ClockIn.In(loc).Format("15:04"))
	}
	if e.ClockOut != nil {
		fmt.Fprintf(out, "  clock out: %s\n", e.ClockOut.In(loc).Format("15:04"))
	}
	if e.LunchBreak != nil {
		fmt.Fprintf(out, "  lunch:     %s\n", spanLabel(e.LunchBreak, loc))
	}
	for i := range e.ShortBreaks {
		fmt.Fprintf(out, "  break:     %s\n", spanLabel(&e.ShortBreaks[i], loc))
	}
	fmt.Fprintf(out, "  worked:    %s (%.2fh)\n", s.Worked, s.NetHours)
	fmt.Fprintf(out, "  breaks:    %.1f min\n", s.BreakMinutes)
	if e.AutoClosed {
		fmt.Fprintln(out, "  (closed automatically)")
	}
	return nil
}

func spanLabel(p *entry.Break, loc *time.Location) string {
	if p.End == nil {
		return p.Start.In(loc).Format("15:04") + " - ..."
	}
	return p.Start.In(loc).Format("15:04") + " - " + p.End.In(loc).Format("15:04")
}
