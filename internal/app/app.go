// Package app wires configuration, storage and services into a running
// timeclock instance shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/timeclock/internal/buntstore"
	"github.com/rpggio/timeclock/internal/changefeed"
	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/config"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/domain/report"
	"github.com/rpggio/timeclock/internal/domain/tracking"
	"github.com/rpggio/timeclock/internal/mcp"
	"github.com/rpggio/timeclock/internal/notify"
	"github.com/rpggio/timeclock/internal/repository"
	"github.com/rpggio/timeclock/internal/sqlite"
	"github.com/rpggio/timeclock/internal/timecalc"
)

// Stores bundles the repositories of one backing store.
type Stores struct {
	Entries     repository.EntryRepository
	Preferences reminder.PreferencesRepository
	Activities  repository.ActivityRepository
	Feed        *changefeed.Feed
	Close       func() error
}

// App is a wired timeclock instance.
type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Clock       clock.Clock
	Stores      Stores
	Tracking    *tracking.Service
	Reports     *report.Service
	Preferences *reminder.PreferencesService
	Activity    *activity.Service
	Notifier    reminder.Notifier
	Snoozer     *reminder.Snoozer
	// Scheduler is nil when reminders are disabled.
	Scheduler *reminder.Scheduler

	watcher *changefeed.FileWatcher
	started bool
}

// New opens the configured store and builds every service. Nothing runs in
// the background until Start.
func New(cfg config.Config, logger *slog.Logger, clk clock.Clock) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.System{}
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := tracking.ParseStalePolicy(cfg.Tracking.StaleClosePolicy)
	if err != nil {
		return nil, err
	}
	weekStart, err := timecalc.ParseWeekday(cfg.Reports.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("invalid week_start: %w", err)
	}

	stores, err := OpenStores(cfg.Store)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Clock:  clk,
		Stores: stores,
	}
	a.Activity = activity.NewService(stores.Activities, clk, logger)
	a.Tracking = tracking.NewService(stores.Entries, clk, tracking.Config{
		Location:    loc,
		StalePolicy: policy,
		MaxShift:    cfg.MaxShift(),
	}, a.Activity, logger)
	a.Reports = report.NewService(stores.Entries, clk, report.Config{Location: loc, WeekStart: weekStart}, logger)
	a.Preferences = reminder.NewPreferencesService(stores.Preferences, clk, a.Activity, logger)

	a.Notifier, err = newNotifier(cfg.Notify, logger)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	if cfg.Reminders.Enabled {
		a.Snoozer = reminder.NewSnoozer()
		a.Scheduler = reminder.NewScheduler(a.Tracking, stores.Preferences, a.Notifier, clk, reminder.SchedulerConfig{
			CheckInterval: cfg.Reminders.CheckInterval,
			SweepInterval: cfg.Reminders.SweepInterval,
			Sweeper:       a.Tracking,
			Suppressor:    a.Snoozer,
			Changes:       stores.Feed,
			Activities:    a.Activity,
		}, logger)
	}

	// A buntdb file is locked to one process, so there is nothing to watch.
	if cfg.Store.Watch && cfg.Store.Driver != "buntdb" && !isMemory(cfg.Store.Path) {
		a.watcher, err = changefeed.NewFileWatcher(cfg.Store.Path, stores.Feed, 0, logger)
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
	}

	return a, nil
}

// OpenStores opens the store named by cfg.Driver.
func OpenStores(cfg config.StoreConfig) (Stores, error) {
	if err := ensureDir(cfg.Path); err != nil {
		return Stores{}, fmt.Errorf("prepare store path: %w", err)
	}
	switch cfg.Driver {
	case "", "sqlite":
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return Stores{}, err
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return Stores{}, err
		}
		return Stores{
			Entries:     sqlite.NewEntryRepository(db),
			Preferences: sqlite.NewPreferencesRepository(db),
			Activities:  sqlite.NewActivityRepository(db),
			Feed:        db.Feed(),
			Close:       db.Close,
		}, nil
	case "buntdb":
		store, err := buntstore.Open(cfg.Path)
		if err != nil {
			return Stores{}, err
		}
		return Stores{
			Entries:     buntstore.NewEntryRepository(store),
			Preferences: buntstore.NewPreferencesRepository(store),
			Activities:  buntstore.NewActivityRepository(store),
			Feed:        store.Feed(),
			Close:       store.Close,
		}, nil
	default:
		return Stores{}, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Services returns the services exposed over MCP and REST.
func (a *App) Services() mcp.Services {
	s := mcp.Services{
		Tracking:    a.Tracking,
		Reports:     a.Reports,
		Preferences: a.Preferences,
		Activity:    a.Activity,
	}
	if a.Scheduler != nil {
		s.Presence = a.Scheduler
		s.Snoozer = a.Snoozer
	}
	return s
}

// Handler returns the operation dispatcher shared by REST and JSON-RPC.
func (a *App) Handler() *mcp.Handler {
	return mcp.NewHandler(a.Services())
}

// MCPServer builds the MCP server.
func (a *App) MCPServer(version string) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services:    a.Services(),
		DefaultUser: a.Config.DefaultUser,
		Version:     version,
		Logger:      a.Logger,
	})
}

// Start subscribes the snapshot cache, starts the file watcher and the
// reminder scheduler.
func (a *App) Start(ctx context.Context) error {
	if a.started {
		return nil
	}
	a.Tracking.Watch()
	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.Tracking.Unwatch()
			return fmt.Errorf("start file watcher: %w", err)
		}
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Start(ctx); err != nil {
			return err
		}
		if a.Config.DefaultUser != "" {
			a.Scheduler.Watch(a.Config.DefaultUser)
		}
	}
	a.started = true
	return nil
}

// Close stops background work and closes the store.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.Tracking.Unwatch()
	a.started = false
	if a.Stores.Close == nil {
		return nil
	}
	return a.Stores.Close()
}

func newNotifier(cfg config.NotifyConfig, logger *slog.Logger) (reminder.Notifier, error) {
	log := notify.NewLogNotifier(logger)
	switch cmd := strings.TrimSpace(cfg.Command); cmd {
	case "":
		return log, nil
	case "desktop":
		if d := notify.Desktop(); d != nil {
			return notify.Multi{log, d}, nil
		}
		logger.Warn("no desktop notifier for this platform, logging reminders only")
		return log, nil
	default:
		c, err := notify.NewCommandNotifier(cmd)
		if err != nil {
			return nil, err
		}
		return notify.Multi{log, c}, nil
	}
}

func isMemory(path string) bool {
	return path == "" || strings.Contains(path, ":memory:")
}

func ensureDir(path string) error {
	if isMemory(path) {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	return nil
}
