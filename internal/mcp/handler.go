package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/domain/tracking"
	"github.com/rpggio/timeclock/internal/timecalc"
)

// Handler dispatches tool calls to domain services.
type Handler struct {
	services Services
}

// NewHandler creates a Handler.
func NewHandler(services Services) *Handler {
	return &Handler{services: services}
}

// Handle runs the tool named method for userID. A user_id argument in params
// overrides userID.
func (h *Handler) Handle(ctx context.Context, userID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "clock_in":
		return h.transition(ctx, userID, params, h.services.Tracking.ClockIn)
	case "clock_out":
		return h.transition(ctx, userID, params, h.services.Tracking.ClockOut)
	case "start_lunch_break":
		return h.transition(ctx, userID, params, h.services.Tracking.StartLunchBreak)
	case "end_lunch_break":
		return h.transition(ctx, userID, params, h.services.Tracking.EndLunchBreak)
	case "start_short_break":
		return h.transition(ctx, userID, params, h.services.Tracking.StartShortBreak)
	case "end_short_break":
		return h.transition(ctx, userID, params, h.services.Tracking.EndShortBreak)
	case "get_today":
		return h.transition(ctx, userID, params, h.services.Tracking.Today)
	case "weekly_report":
		var req WeeklyReportParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		userID = pickUser(req.UserID, userID)
		start := h.services.Tracking.Now().In(h.services.Tracking.Location())
		if req.WeekStart != "" {
			t, err := timecalc.ParseDate(req.WeekStart, h.services.Tracking.Location())
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
			}
			start = t
		}
		return h.services.Reports.WeeklyReport(ctx, userID, start)
	case "monthly_report":
		var req MonthlyReportParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		userID = pickUser(req.UserID, userID)
		now := h.services.Tracking.Now().In(h.services.Tracking.Location())
		year, month := now.Year(), now.Month()
		if req.Month != "" {
			var err error
			year, month, err = timecalc.ParseMonth(req.Month)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
			}
		}
		return h.services.Reports.MonthlyReport(ctx, userID, year, month)
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{
			EntryID:      req.EntryID,
			ActivityType: req.Type,
			Limit:        req.Limit,
			Offset:       req.Offset,
		}
		if req.Since != "" {
			since, err := time.Parse(time.RFC3339, req.Since)
			if err != nil {
				return nil, fmt.Errorf("%w: since: %w", ErrInvalidParams, err)
			}
			opts.Since = &since
		}
		entries, err := h.services.Activity.GetRecentActivity(ctx, pickUser(req.UserID, userID), opts)
		if err != nil {
			return nil, err
		}
		return ActivityResponse{Entries: entries}, nil
	case "get_preferences":
		var req UserParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		userID = pickUser(req.UserID, userID)
		h.watch(userID)
		return h.services.Preferences.Get(ctx, userID)
	case "update_preferences":
		var req UpdatePreferencesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		userID = pickUser(req.UserID, userID)
		h.watch(userID)
		return h.services.Preferences.Update(ctx, userID, reminder.PreferencesUpdate{
			EyeCareEnabled:         req.EyeCareEnabled,
			EyeCareIntervalMinutes: req.EyeCareIntervalMinutes,
			ClockOutThresholdHours: req.ClockOutThresholdHours,
		})
	case "snooze_reminders":
		var req SnoozeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if h.services.Snoozer == nil {
			return nil, &APIError{Code: "REMINDERS_DISABLED", Message: "reminders are not running", RecoveryHint: "Enable reminders in the server config"}
		}
		if req.Minutes < 0 {
			return nil, fmt.Errorf("%w: minutes must not be negative", ErrInvalidParams)
		}
		userID = pickUser(req.UserID, userID)
		if userID == "" {
			return nil, fmt.Errorf("%w: user_id is required", ErrInvalidParams)
		}
		if req.Minutes == 0 {
			h.services.Snoozer.Resume(userID)
			return SnoozeResponse{UserID: userID}, nil
		}
		until := h.services.Tracking.Now().Add(time.Duration(req.Minutes) * time.Minute)
		h.services.Snoozer.Snooze(userID, until)
		return SnoozeResponse{UserID: userID, SnoozedUntil: &until}, nil
	case "close_stale_entries":
		var req CloseStaleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		asOf := h.services.Tracking.Now()
		if req.AsOf != "" {
			t, err := time.Parse(time.RFC3339, req.AsOf)
			if err != nil {
				return nil, fmt.Errorf("%w: as_of: %w", ErrInvalidParams, err)
			}
			asOf = t
		}
		res, err := h.services.Tracking.AutoCloseStaleEntries(ctx, asOf)
		if err != nil {
			return nil, err
		}
		return newCloseStaleResponse(asOf, res), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func (h *Handler) transition(ctx context.Context, userID string, params json.RawMessage, op func(context.Context, string) (*entry.TimeEntry, error)) (any, error) {
	var req UserParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	userID = pickUser(req.UserID, userID)
	h.watch(userID)
	e, err := op(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tracking.Summarize(e, h.services.Tracking.Now()), nil
}

// watch marks the user as present so the scheduler checks their reminders.
func (h *Handler) watch(userID string) {
	if h.services.Presence != nil && userID != "" {
		h.services.Presence.Watch(userID)
	}
}

func newCloseStaleResponse(asOf time.Time, res tracking.SweepResult) CloseStaleResponse {
	resp := CloseStaleResponse{
		AsOf:     asOf,
		Closed:   res.Closed,
		Failures: make([]StaleFailure, 0, len(res.Failures)),
	}
	if resp.Closed == nil {
		resp.Closed = []entry.TimeEntry{}
	}
	for _, f := range res.Failures {
		resp.Failures = append(resp.Failures, StaleFailure{
			EntryID: f.EntryID,
			UserID:  f.UserID,
			Date:    f.Date,
			Error:   f.Err.Error(),
		})
	}
	return resp
}

func registerTools(server *sdkmcp.Server, h *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		def := def
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
			Annotations: &sdkmcp.ToolAnnotations{ReadOnlyHint: def.ReadOnly},
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := h.Handle(ctx, getUserID(ctx), def.Name, args)
			if err != nil {
				logger.Debug("tool call failed", "tool", def.Name, "user_id", getUserID(ctx), "error", err)
				return errorResult(err), nil
			}
			return jsonResult(result)
		})
	}
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, _ := json.Marshal(map[string]any{"error": apiErr})
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

func pickUser(explicit, fallback string) string {
	if u := strings.TrimSpace(explicit); u != "" {
		return u
	}
	return fallback
}
