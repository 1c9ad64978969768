package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/domain/report"
	"github.com/rpggio/timeclock/internal/domain/tracking"
)

// TrackingService defines time tracking operations needed by MCP.
type TrackingService interface {
	ClockIn(ctx context.Context, userID string) (*entry.TimeEntry, error)
	ClockOut(ctx context.Context, userID string) (*entry.TimeEntry, error)
	StartLunchBreak(ctx context.Context, userID string) (*entry.TimeEntry, error)
	EndLunchBreak(ctx context.Context, userID string) (*entry.TimeEntry, error)
	StartShortBreak(ctx context.Context, userID string) (*entry.TimeEntry, error)
	EndShortBreak(ctx context.Context, userID string) (*entry.TimeEntry, error)
	Today(ctx context.Context, userID string) (*entry.TimeEntry, error)
	AutoCloseStaleEntries(ctx context.Context, asOf time.Time) (tracking.SweepResult, error)
	Now() time.Time
	Location() *time.Location
}

// ReportService defines report operations needed by MCP.
type ReportService interface {
	WeeklyReport(ctx context.Context, userID string, weekStart time.Time) (*report.WeeklyReport, error)
	MonthlyReport(ctx context.Context, userID string, year int, month time.Month) (*report.MonthlyReport, error)
}

// PreferencesService defines reminder preference operations needed by MCP.
type PreferencesService interface {
	Get(ctx context.Context, userID string) (*reminder.Preferences, error)
	Update(ctx context.Context, userID string, upd reminder.PreferencesUpdate) (*reminder.Preferences, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, userID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Presence registers users with the reminder scheduler.
type Presence interface {
	Watch(userID string)
}

// Snoozer pauses reminders for a user.
type Snoozer interface {
	Snooze(userID string, until time.Time)
	Resume(userID string)
}

// Services contains all domain services needed by MCP. Presence and Snoozer
// are optional.
type Services struct {
	Tracking    TrackingService
	Reports     ReportService
	Preferences PreferencesService
	Activity    ActivityService
	Presence    Presence
	Snoozer     Snoozer
}

// Config contains server configuration.
type Config struct {
	Services Services
	// DefaultUser is used when a call names no user.
	DefaultUser string
	Version     string
	Logger      *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "timeclock",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// The first middleware runs first, so the call log sees the resolved user.
	server.AddReceivingMiddleware(userMiddleware(cfg.DefaultUser), callLogMiddleware(cfg.Logger))

	registerTools(server, NewHandler(cfg.Services), cfg.Logger)

	return server
}
