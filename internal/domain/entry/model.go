package entry

import "time"

// Status is the attendance state of a day's entry.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusClockedIn  Status = "CLOCKED_IN"
	StatusOnLunch    Status = "ON_LUNCH"
	StatusOnBreak    Status = "ON_BREAK"
	StatusClockedOut Status = "CLOCKED_OUT"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusClockedIn, StatusOnLunch, StatusOnBreak, StatusClockedOut:
		return true
	}
	return false
}

// Open reports whether a session is in progress.
func (s Status) Open() bool {
	return s == StatusClockedIn || s == StatusOnLunch || s == StatusOnBreak
}

// Break is a lunch or short break. End is nil while the break is open.
type Break struct {
	ID              string     `json:"id"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
}

// IsOpen reports whether the break has not ended yet.
func (b *Break) IsOpen() bool {
	return b != nil && b.End == nil
}

// TimeEntry is one user's attendance record for one calendar day.
type TimeEntry struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Date         string     `json:"date"`
	ClockIn      *time.Time `json:"clock_in,omitempty"`
	ClockOut     *time.Time `json:"clock_out,omitempty"`
	LunchBreak   *Break     `json:"lunch_break,omitempty"`
	ShortBreaks  []Break    `json:"short_breaks"`
	Status       Status     `json:"status"`
	TotalHours   *float64   `json:"total_hours,omitempty"`
	AutoClosed   bool       `json:"auto_closed,omitempty"`
	LastModified time.Time  `json:"last_modified"`
	Version      int64      `json:"version"`
}

// New returns an unsaved NOT_STARTED entry.
func New(id, userID, date string) *TimeEntry {
	return &TimeEntry{
		ID:          id,
		UserID:      userID,
		Date:        date,
		ShortBreaks: []Break{},
		Status:      StatusNotStarted,
	}
}

// IsOpen reports whether the entry has an unfinished session.
func (e *TimeEntry) IsOpen() bool {
	return e != nil && e.Status.Open()
}

// OpenShortBreak returns the short break that has not ended, if any.
func (e *TimeEntry) OpenShortBreak() *Break {
	for i := len(e.ShortBreaks) - 1; i >= 0; i-- {
		if e.ShortBreaks[i].End == nil {
			return &e.ShortBreaks[i]
		}
	}
	return nil
}

// OpenBreak returns whichever break is currently open.
func (e *TimeEntry) OpenBreak() *Break {
	if e.LunchBreak.IsOpen() {
		return e.LunchBreak
	}
	return e.OpenShortBreak()
}

// ActiveSince returns when the current stretch of work began: the clock-in or
// the end of the most recent break, whichever is later. Zero if never clocked in.
func (e *TimeEntry) ActiveSince() time.Time {
	if e.ClockIn == nil {
		return time.Time{}
	}
	since := *e.ClockIn
	if e.LunchBreak != nil && e.LunchBreak.End != nil && e.LunchBreak.End.After(since) {
		since = *e.LunchBreak.End
	}
	for _, b := range e.ShortBreaks {
		if b.End != nil && b.End.After(since) {
			since = *b.End
		}
	}
	return since
}

// LastActivity returns the latest recorded instant on the entry.
func (e *TimeEntry) LastActivity() time.Time {
	var last time.Time
	bump := func(t *time.Time) {
		if t != nil && t.After(last) {
			last = *t
		}
	}
	bump(e.ClockIn)
	bump(e.ClockOut)
	if e.LunchBreak != nil {
		bump(&e.LunchBreak.Start)
		bump(e.LunchBreak.End)
	}
	for i := range e.ShortBreaks {
		bump(&e.ShortBreaks[i].Start)
		bump(e.ShortBreaks[i].End)
	}
	return last
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (e *TimeEntry) Clone() *TimeEntry {
	if e == nil {
		return nil
	}
	out := *e
	out.ClockIn = cloneTime(e.ClockIn)
	out.ClockOut = cloneTime(e.ClockOut)
	if e.LunchBreak != nil {
		lb := cloneBreak(*e.LunchBreak)
		out.LunchBreak = &lb
	}
	out.ShortBreaks = make([]Break, len(e.ShortBreaks))
	for i, b := range e.ShortBreaks {
		out.ShortBreaks[i] = cloneBreak(b)
	}
	if e.TotalHours != nil {
		h := *e.TotalHours
		out.TotalHours = &h
	}
	return &out
}

func cloneBreak(b Break) Break {
	out := b
	out.End = cloneTime(b.End)
	if b.DurationSeconds != nil {
		d := *b.DurationSeconds
		out.DurationSeconds = &d
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Change announces that a stored entry was written. External changes come from
// another process and carry no key; subscribers reload whatever they hold.
type Change struct {
	UserID   string `json:"user_id,omitempty"`
	Date     string `json:"date,omitempty"`
	Version  int64  `json:"version,omitempty"`
	External bool   `json:"external,omitempty"`
}

// Affects reports whether the change may concern the given user.
func (c Change) Affects(userID string) bool {
	return c.External || c.UserID == "" || c.UserID == userID
}
