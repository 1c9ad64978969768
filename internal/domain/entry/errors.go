package entry

import "errors"

var (
	// ErrInvalidTransition indicates the action is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid time entry transition")
	// ErrNoActiveSession indicates there is no open clock-in or break to end.
	ErrNoActiveSession = errors.New("no active session")
	// ErrAlreadyOnBreak indicates a break is already open.
	ErrAlreadyOnBreak = errors.New("already on a break")
	// ErrLunchAlreadyTaken indicates today's lunch break was already taken.
	ErrLunchAlreadyTaken = errors.New("lunch break already taken today")
	// ErrInvalidEntry indicates a stored entry violates its invariants.
	ErrInvalidEntry = errors.New("invalid time entry")
)
