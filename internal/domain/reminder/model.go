package reminder

import "time"

const (
	DefaultEyeCareIntervalMinutes = 20
	MinEyeCareIntervalMinutes     = 15
	MaxEyeCareIntervalMinutes     = 60
	DefaultClockOutThresholdHours = 10.0
)

// Kind identifies a reminder.
type Kind string

const (
	KindEyeCare  Kind = "eye_care"
	KindClockOut Kind = "clock_out"
)

// Preferences are a user's reminder settings plus the markers that stop a
// reminder from firing twice.
type Preferences struct {
	UserID                 string  `json:"user_id"`
	EyeCareEnabled         bool    `json:"eye_care_enabled"`
	EyeCareIntervalMinutes int     `json:"eye_care_interval_minutes"`
	ClockOutThresholdHours float64 `json:"clock_out_threshold_hours"`
	// LastEyeCareReminder is when the eye-care reminder last fired.
	LastEyeCareReminder *time.Time `json:"last_eye_care_reminder,omitempty"`
	// ClockOutReminderFor is the clock-in instant of the session the
	// forgot-clock-out reminder already fired for.
	ClockOutReminderFor *time.Time `json:"clock_out_reminder_for,omitempty"`
	ModifiedAt          time.Time  `json:"modified_at"`
}

// DefaultPreferences returns the settings used for a user who never saved any.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:                 userID,
		EyeCareEnabled:         true,
		EyeCareIntervalMinutes: DefaultEyeCareIntervalMinutes,
		ClockOutThresholdHours: DefaultClockOutThresholdHours,
	}
}

// NormalizePreferences applies defaults and clamps out-of-range values.
func NormalizePreferences(p *Preferences) *Preferences {
	if p == nil {
		return nil
	}
	out := *p
	switch {
	case out.EyeCareIntervalMinutes == 0:
		out.EyeCareIntervalMinutes = DefaultEyeCareIntervalMinutes
	case out.EyeCareIntervalMinutes < MinEyeCareIntervalMinutes:
		out.EyeCareIntervalMinutes = MinEyeCareIntervalMinutes
	case out.EyeCareIntervalMinutes > MaxEyeCareIntervalMinutes:
		out.EyeCareIntervalMinutes = MaxEyeCareIntervalMinutes
	}
	if out.ClockOutThresholdHours <= 0 {
		out.ClockOutThresholdHours = DefaultClockOutThresholdHours
	}
	return &out
}

// EyeCareInterval returns the eye-care interval as a duration.
func (p *Preferences) EyeCareInterval() time.Duration {
	return time.Duration(p.EyeCareIntervalMinutes) * time.Minute
}

// ClockOutThreshold returns the forgot-clock-out threshold as a duration.
func (p *Preferences) ClockOutThreshold() time.Duration {
	return time.Duration(p.ClockOutThresholdHours * float64(time.Hour))
}

// Notification is what the scheduler hands to a Notifier.
type Notification struct {
	UserID  string    `json:"user_id"`
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
