package entry

import (
	"fmt"
	"strings"
)

// Action is a user-initiated change to a day's entry.
type Action string

const (
	ActionClockIn         Action = "clock_in"
	ActionClockOut        Action = "clock_out"
	ActionStartLunch      Action = "start_lunch_break"
	ActionEndLunch        Action = "end_lunch_break"
	ActionStartShortBreak Action = "start_short_break"
	ActionEndShortBreak   Action = "end_short_break"
)

// ValidateTransition checks whether action may be applied to e and returns the
// resulting status.
func ValidateTransition(e *TimeEntry, action Action) (Status, error) {
	from := e.Status
	switch action {
	case ActionClockIn:
		if from == StatusNotStarted {
			return StatusClockedIn, nil
		}
	case ActionClockOut:
		switch from {
		case StatusClockedIn:
			if e.ClockIn == nil {
				return from, ErrNoActiveSession
			}
			return StatusClockedOut, nil
		case StatusNotStarted, StatusClockedOut:
			return from, ErrNoActiveSession
		}
	case ActionStartLunch, ActionStartShortBreak:
		switch from {
		case StatusOnLunch, StatusOnBreak:
			return from, ErrAlreadyOnBreak
		case StatusClockedIn:
			if action == ActionStartLunch && e.LunchBreak != nil {
				return from, ErrLunchAlreadyTaken
			}
			if action == ActionStartLunch {
				return StatusOnLunch, nil
			}
			return StatusOnBreak, nil
		}
	case ActionEndLunch:
		switch from {
		case StatusOnLunch:
			if !e.LunchBreak.IsOpen() {
				return from, ErrNoActiveSession
			}
			return StatusClockedIn, nil
		case StatusNotStarted, StatusClockedIn, StatusClockedOut:
			return from, ErrNoActiveSession
		}
	case ActionEndShortBreak:
		switch from {
		case StatusOnBreak:
			if e.OpenShortBreak() == nil {
				return from, ErrNoActiveSession
			}
			return StatusClockedIn, nil
		case StatusNotStarted, StatusClockedIn, StatusClockedOut:
			return from, ErrNoActiveSession
		}
	default:
		return from, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	return from, fmt.Errorf("%w: %s not allowed while %s", ErrInvalidTransition, action, from)
}

// Validate checks the structural invariants of an entry.
func Validate(e *TimeEntry) error {
	if e == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.UserID) == "" || strings.TrimSpace(e.Date) == "" {
		return fmt.Errorf("%w: user and date are required", ErrInvalidEntry)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEntry, e.Status)
	}
	if e.ClockIn != nil && e.ClockOut != nil && e.ClockOut.Before(*e.ClockIn) {
		return fmt.Errorf("%w: clock-out before clock-in", ErrInvalidEntry)
	}
	if e.TotalHours != nil && *e.TotalHours < 0 {
		return fmt.Errorf("%w: negative total hours", ErrInvalidEntry)
	}

	open := 0
	if e.LunchBreak != nil {
		if err := validateBreak(*e.LunchBreak); err != nil {
			return err
		}
		if e.LunchBreak.End == nil {
			open++
		}
	}
	for _, b := range e.ShortBreaks {
		if err := validateBreak(b); err != nil {
			return err
		}
		if b.End == nil {
			open++
		}
	}
	if open > 1 {
		return fmt.Errorf("%w: more than one open break", ErrInvalidEntry)
	}

	switch e.Status {
	case StatusNotStarted:
		if e.ClockIn != nil {
			return fmt.Errorf("%w: not started entry has a clock-in", ErrInvalidEntry)
		}
	case StatusClockedIn:
		if e.ClockIn == nil || e.ClockOut != nil || open != 0 {
			return fmt.Errorf("%w: clocked-in entry must have only a clock-in and no open break", ErrInvalidEntry)
		}
	case StatusOnLunch:
		if e.ClockIn == nil || !e.LunchBreak.IsOpen() {
			return fmt.Errorf("%w: on-lunch entry has no open lunch break", ErrInvalidEntry)
		}
	case StatusOnBreak:
		if e.ClockIn == nil || e.OpenShortBreak() == nil {
			return fmt.Errorf("%w: on-break entry has no open short break", ErrInvalidEntry)
		}
	case StatusClockedOut:
		if e.ClockIn == nil || e.ClockOut == nil || open != 0 {
			return fmt.Errorf("%w: clocked-out entry must be closed", ErrInvalidEntry)
		}
	}
	return nil
}

func validateBreak(b Break) error {
	if b.Start.IsZero() {
		return fmt.Errorf("%w: break %q has no start", ErrInvalidEntry, b.ID)
	}
	if b.End != nil && b.End.Before(b.Start) {
		return fmt.Errorf("%w: break %q ends before it starts", ErrInvalidEntry, b.ID)
	}
	if b.DurationSeconds != nil && *b.DurationSeconds < 0 {
		return fmt.Errorf("%w: break %q has negative duration", ErrInvalidEntry, b.ID)
	}
	return nil
}
