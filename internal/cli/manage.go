package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rpggio/timeclock/internal/app"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/spf13/cobra"
)

func (r *runner) activityCmd() *cobra.Command {
	var (
		limit int
		kind  string
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return r.withApp(ctx, false, func(a *app.App, userID string) error {
				opts := activity.ListActivityOptions{Limit: limit}
				if kind != "" {
					t := activity.ActivityType(kind)
					opts.ActivityType = &t
				}
				entries, err := a.Activity.GetRecentActivity(ctx, userID, opts)
				if err != nil {
					return err
				}
				if r.flags.json {
					return r.printJSON(entries)
				}
				loc := a.Tracking.Location()
				t := table.NewWriter()
				t.SetOutputMirror(r.env.Out)
				t.AppendHeader(table.Row{"When", "Type", "Summary"})
				for _, e := range entries {
					t.AppendRow(table.Row{e.CreatedAt.In(loc).Format("2006-01-02 15:04"), e.ActivityType, e.Summary})
				}
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries")
	cmd.Flags().StringVar(&kind, "type", "", "only this activity type, e.g. clock_in")
	return cmd
}

func (r *runner) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change reminder preferences",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show reminder preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return r.withApp(ctx, false, func(a *app.App, userID string) error {
				p, err := a.Preferences.Get(ctx, userID)
				if err != nil {
					return err
				}
				return r.printPreferences(p)
			})
		},
	}

	var (
		eyeCare   bool
		interval  int
		threshold float64
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change reminder preferences; unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd reminder.PreferencesUpdate
			flags := cmd.Flags()
			if flags.Changed("eye-care") {
				upd.EyeCareEnabled = &eyeCare
			}
			if flags.Changed("interval") {
				upd.EyeCareIntervalMinutes = &interval
			}
			if flags.Changed("threshold") {
				upd.ClockOutThresholdHours = &threshold
			}
			ctx := cmd.Context()
			return r.withApp(ctx, false, func(a *app.App, userID string) error {
				p, err := a.Preferences.Update(ctx, userID, upd)
				if err != nil {
					return err
				}
				return r.printPreferences(p)
			})
		},
	}
	set.Flags().BoolVar(&eyeCare, "eye-care", true, "enable the eye-care reminder")
	set.Flags().IntVar(&interval, "interval", reminder.DefaultEyeCareIntervalMinutes, "eye-care interval in minutes (15-60)")
	set.Flags().Float64Var(&threshold, "threshold", reminder.DefaultClockOutThresholdHours, "hours after clock-in before the clock-out reminder")

	cmd.AddCommand(get, set)
	return cmd
}

func (r *runner) printPreferences(p *reminder.Preferences) error {
	if r.flags.json {
		return r.printJSON(p)
	}
	fmt.Fprintf(r.env.Out, "eye care:            %t\n", p.EyeCareEnabled)
	fmt.Fprintf(r.env.Out, "eye care interval:   %d min\n", p.EyeCareIntervalMinutes)
	fmt.Fprintf(r.env.Out, "clock-out reminder:  %.1f h\n", p.ClockOutThresholdHours)
	return nil
}

func (r *runner) sweepCmd() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Close sessions left open on earlier days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return r.withApp(ctx, false, func(a *app.App, _ string) error {
				at := a.Tracking.Now()
				if asOf != "" {
					t, err := time.Parse(time.RFC3339, asOf)
					if err != nil {
						return fmt.Errorf("--as-of: %w", err)
					}
					at = t
				}
				res, err := a.Tracking.AutoCloseStaleEntries(ctx, at)
				if err != nil {
					return err
				}
				if r.flags.json {
					return r.printJSON(res)
				}
				for _, e := range res.Closed {
					hours := 0.0
					if e.TotalHours != nil {
						hours = *e.TotalHours
					}
					fmt.Fprintf(r.env.Out, "closed %s %s (%.2fh)\n", e.UserID, e.Date, hours)
				}
				for _, f := range res.Failures {
					fmt.Fprintf(r.env.Out, "failed %s %s: %v\n", f.UserID, f.Date, f.Err)
				}
				fmt.Fprintf(r.env.Out, "%d closed, %d failed\n", len(res.Closed), len(res.Failures))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "sweep as of this RFC 3339 instant (default: now)")
	return cmd
}
