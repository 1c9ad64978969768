package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rpggio/timeclock/internal/app"
	"github.com/rpggio/timeclock/internal/domain/report"
	"github.com/rpggio/timeclock/internal/timecalc"
	"github.com/spf13/cobra"
)

func (r *runner) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Weekly and monthly hour reports",
	}

	var start string
	week := &cobra.Command{
		Use:   "week",
		Short: "Report a week (default: the current one)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return r.withApp(ctx, false, func(a *app.App, userID string) error {
				loc := a.Tracking.Location()
				day := a.Tracking.Now().In(loc)
				if start != "" {
					t, err := timecalc.ParseDate(start, loc)
					if err != nil {
						return err
					}
					day = t
				}
				rep, err := a.Reports.WeeklyReport(ctx, userID, day)
				if err != nil {
					return err
				}
				if r.flags.json {
					return r.printJSON(rep)
				}
				renderWeek(r.env.Out, rep, loc)
				return nil
			})
		},
	}
	week.Flags().StringVar(&start, "start", "", "any date in the week, YYYY-MM-DD")

	var month string
	monthCmd := &cobra.Command{
		Use:   "month",
		Short: "Report a calendar month (default: the current one)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return r.withApp(ctx, false, func(a *app.App, userID string) error {
				now := a.Tracking.Now().In(a.Tracking.Location())
				year, m := now.Year(), now.Month()
				if month != "" {
					var err error
					if year, m, err = timecalc.ParseMonth(month); err != nil {
						return err
					}
				}
				rep, err := a.Reports.MonthlyReport(ctx, userID, year, m)
				if err != nil {
					return err
				}
				if r.flags.json {
					return r.printJSON(rep)
				}
				renderMonth(r.env.Out, rep)
				return nil
			})
		},
	}
	monthCmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM")

	cmd.AddCommand(week, monthCmd)
	return cmd
}

func renderWeek(w io.Writer, rep *report.WeeklyReport, loc *time.Location) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Week %s to %s", rep.WeekStart, rep.WeekEnd))
	t.AppendHeader(table.Row{"Date", "Day", "Status", "In", "Out", "Breaks (min)", "Hours"})
	for _, d := range rep.Days {
		t.AppendRow(table.Row{
			d.Date,
			d.Weekday,
			statusLabel(d),
			clockLabel(d.ClockIn, loc),
			clockLabel(d.ClockOut, loc),
			fmt.Sprintf("%.1f", d.BreakMinutes),
			fmt.Sprintf("%.2f", d.Hours),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", fmt.Sprintf("%.2f", rep.TotalHours)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

func renderMonth(w io.Writer, rep *report.MonthlyReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Month " + rep.Month)
	t.AppendHeader(table.Row{"Week", "Hours"})
	for _, wk := range rep.Weeks {
		t.AppendRow(table.Row{wk.WeekStart + " - " + wk.WeekEnd, fmt.Sprintf("%.2f", wk.TotalHours)})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Days worked", rep.DaysWorked})
	t.AppendRow(table.Row{"Average per day", fmt.Sprintf("%.2f", rep.AverageDailyHours)})
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%.2f", rep.TotalHours)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

func statusLabel(d report.DayReport) string {
	if d.AutoClosed {
		return string(d.Status) + "*"
	}
	return string(d.Status)
}

func clockLabel(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}
