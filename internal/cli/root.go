// Package cli implements the timeclock command-line client. It works
// directly against the configured store, so the server and any number of
// CLI invocations can share one database file.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpggio/timeclock/internal/app"
	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/config"
	"github.com/rpggio/timeclock/internal/mcp"
	"github.com/spf13/cobra"
)

// Env carries what the commands need from the outside world.
type Env struct {
	Out        io.Writer
	Clock      clock.Clock
	Logger     *slog.Logger
	LoadConfig func() (config.Config, error)
}

type rootFlags struct {
	user   string
	store  string
	driver string
	json   bool
}

type runner struct {
	env   Env
	flags rootFlags
}

// NewRootCommand builds the command tree.
func NewRootCommand(env Env) *cobra.Command {
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.LoadConfig == nil {
		env.LoadConfig = config.Load
	}
	if env.Logger == nil {
		env.Logger = slog.New(slog.DiscardHandler)
	}
	r := &runner{env: env}

	root := &cobra.Command{
		Use:   "timeclock",
		Short: "Track working hours and breaks",
		Long: `timeclock records clock-in, clock-out, lunch and short breaks for the
current day and reports worked hours. Configuration comes from
TIMECLOCK_CONFIG_PATH and TIMECLOCK_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Out)
	pf := root.PersistentFlags()
	pf.StringVarP(&r.flags.user, "user", "u", "", "user to act as (default: configured default user, then $USER)")
	pf.StringVar(&r.flags.store, "store", "", "store path override")
	pf.StringVar(&r.flags.driver, "driver", "", "store driver override: sqlite or buntdb")
	pf.BoolVar(&r.flags.json, "json", false, "print JSON instead of text")

	root.AddCommand(
		r.transitionCmd("in", "Clock in for today", transitionClockIn),
		r.transitionCmd("out", "Clock out for today", transitionClockOut),
		r.breakGroup("lunch", "Lunch break (once per day)", transitionStartLunch, transitionEndLunch),
		r.breakGroup("break", "Short break", transitionStartBreak, transitionEndBreak),
		r.statusCmd(),
		r.reportCmd(),
		r.activityCmd(),
		r.prefsCmd(),
		r.sweepCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand(Env{}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

// withApp opens the store, runs fn and closes the store again. reminders
// controls whether the reminder scheduler is built; only long-running
// commands want it.
func (r *runner) withApp(ctx context.Context, reminders bool, fn func(a *app.App, userID string) error) error {
	cfg, err := r.env.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if r.flags.store != "" {
		cfg.Store.Path = r.flags.store
	}
	if r.flags.driver != "" {
		cfg.Store.Driver = r.flags.driver
	}
	cfg.Reminders.Enabled = cfg.Reminders.Enabled && reminders
	cfg.Store.Watch = cfg.Store.Watch && reminders

	userID := r.flags.user
	if userID == "" {
		userID = cfg.DefaultUser
	}
	if userID == "" {
		userID = os.Getenv("USER")
	}
	if userID == "" {
		return fmt.Errorf("no user: pass --user or set TIMECLOCK_USER")
	}
	cfg.DefaultUser = userID

	a, err := app.New(cfg, r.env.Logger, r.env.Clock)
	if err != nil {
		return err
	}
	defer a.Close()
	if reminders {
		if err := a.Start(ctx); err != nil {
			return err
		}
	}
	return fn(a, userID)
}

func (r *runner) printJSON(v any) error {
	enc := json.NewEncoder(r.env.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe renders domain errors the way the server reports them.
func describe(err error) string {
	apiErr := mcp.MapError(err)
	if apiErr == nil {
		return err.Error()
	}
	if apiErr.RecoveryHint != "" {
		return fmt.Sprintf("%s (%s). %s", apiErr.Message, apiErr.Code, apiErr.RecoveryHint)
	}
	return fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Code)
}
