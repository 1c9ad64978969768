package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/timeclock/internal/domain/activity"
	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/domain/report"
	"github.com/rpggio/timeclock/internal/domain/tracking"
)

var (
	// ErrInvalidParams indicates tool arguments could not be decoded or parsed.
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrUnknownMethod is returned by Handler.Handle for a method it does not serve.
	ErrUnknownMethod = errors.New("unknown method")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, tracking.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "time entry changed concurrently", RecoveryHint: "Call get_today and retry if still needed"}
	case errors.Is(err, tracking.ErrStoreUnavailable):
		return &APIError{Code: "STORE_UNAVAILABLE", Message: "time entry store unavailable", RecoveryHint: "Retry later"}
	case errors.Is(err, report.ErrReportUnavailable):
		return &APIError{Code: "REPORT_UNAVAILABLE", Message: "report could not be built", RecoveryHint: "Retry later"}
	case errors.Is(err, tracking.ErrStaleEntryCloseFailure):
		return &APIError{Code: "STALE_CLOSE_FAILED", Message: err.Error(), RecoveryHint: "The next sweep retries"}
	case errors.Is(err, entry.ErrNoActiveSession):
		return &APIError{Code: "NO_ACTIVE_SESSION", Message: err.Error(), RecoveryHint: "Call clock_in or start the matching break first"}
	case errors.Is(err, entry.ErrAlreadyOnBreak):
		return &APIError{Code: "ALREADY_ON_BREAK", Message: "a break is already open", RecoveryHint: "End the current break first"}
	case errors.Is(err, entry.ErrLunchAlreadyTaken):
		return &APIError{Code: "LUNCH_ALREADY_TAKEN", Message: "lunch break already taken today", RecoveryHint: "Use start_short_break instead"}
	case errors.Is(err, entry.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: err.Error(), RecoveryHint: "Call get_today to see the current status"}
	case errors.Is(err, entry.ErrInvalidEntry):
		return &APIError{Code: "INVALID_ENTRY", Message: err.Error()}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "UNKNOWN_METHOD", Message: err.Error(), RecoveryHint: "List the server's tools for valid names"}
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, tracking.ErrInvalidInput),
		errors.Is(err, reminder.ErrInvalidPreferences),
		errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check the tool's input schema"}
	default:
		return nil
	}
}
