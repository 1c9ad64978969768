package mcp

import (
	"time"

	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
)

// ToolDefinition describes a callable tool
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
	ReadOnly    bool
}

type UserParams struct {
	UserID string `json:"user_id,omitempty"`
}

type WeeklyReportParams struct {
	UserID    string `json:"user_id,omitempty"`
	WeekStart string `json:"week_start,omitempty"`
}

type MonthlyReportParams struct {
	UserID string `json:"user_id,omitempty"`
	Month  string `json:"month,omitempty"`
}

type GetRecentActivityParams struct {
	UserID  string                 `json:"user_id,omitempty"`
	EntryID *string                `json:"entry_id,omitempty"`
	Type    *activity.ActivityType `json:"type,omitempty"`
	Since   string                 `json:"since,omitempty"`
	Limit   int                    `json:"limit,omitempty"`
	Offset  int                    `json:"offset,omitempty"`
}

type UpdatePreferencesParams struct {
	UserID                 string   `json:"user_id,omitempty"`
	EyeCareEnabled         *bool    `json:"eye_care_enabled,omitempty"`
	EyeCareIntervalMinutes *int     `json:"eye_care_interval_minutes,omitempty"`
	ClockOutThresholdHours *float64 `json:"clock_out_threshold_hours,omitempty"`
}

type SnoozeParams struct {
	UserID  string `json:"user_id,omitempty"`
	Minutes int    `json:"minutes"`
}

type CloseStaleParams struct {
	AsOf string `json:"as_of,omitempty"`
}

type SnoozeResponse struct {
	UserID       string     `json:"user_id"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
}

type StaleFailure struct {
	EntryID string `json:"entry_id"`
	UserID  string `json:"user_id"`
	Date    string `json:"date"`
	Error   string `json:"error"`
}

type CloseStaleResponse struct {
	AsOf     time.Time         `json:"as_of"`
	Closed   []entry.TimeEntry `json:"closed"`
	Failures []StaleFailure    `json:"failures"`
}

type ActivityResponse struct {
	Entries []activity.ActivityEntry `json:"entries"`
}
