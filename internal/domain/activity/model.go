package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeClockIn          ActivityType = "clock_in"
	TypeClockOut         ActivityType = "clock_out"
	TypeLunchStarted     ActivityType = "lunch_started"
	TypeLunchEnded       ActivityType = "lunch_ended"
	TypeBreakStarted     ActivityType = "break_started"
	TypeBreakEnded       ActivityType = "break_ended"
	TypeStaleClosed      ActivityType = "stale_closed"
	TypeStaleCloseFailed ActivityType = "stale_close_failed"
	TypeConflictDetected ActivityType = "conflict_detected"
	TypeEyeCareReminder  ActivityType = "eye_care_reminder"
	TypeClockOutReminder ActivityType = "clock_out_reminder"
	TypePreferences      ActivityType = "preferences_updated"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	UserID       string       `json:"user_id"`
	EntryID      *string      `json:"entry_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
