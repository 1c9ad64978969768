package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/repository"
)

// EntryRepository implements repository.EntryRepository for SQLite
type EntryRepository struct {
	db *DB
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `
	id, user_id, entry_date, clock_in, clock_out, lunch_break, short_breaks,
	status, total_hours, auto_closed, last_modified, version`

// Get retrieves the entry for a user and day
func (r *EntryRepository) Get(ctx context.Context, userID, date string) (*entry.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE user_id = ? AND entry_date = ?`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, userID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return e, nil
}

// Upsert inserts (expectedVersion 0) or updates the entry with optimistic
// concurrency control
func (r *EntryRepository) Upsert(ctx context.Context, e *entry.TimeEntry, expectedVersion int64) error {
	lunch, shorts, err := encodeBreaks(e)
	if err != nil {
		return err
	}
	newVersion := expectedVersion + 1

	if expectedVersion == 0 {
		query := `INSERT INTO time_entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := r.db.ExecContext(ctx, query,
			e.ID,
			e.UserID,
			e.Date,
			e.ClockIn,
			e.ClockOut,
			lunch,
			shorts,
			e.Status,
			e.TotalHours,
			e.AutoClosed,
			e.LastModified,
			newVersion,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			if isCheckViolation(err) {
				return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
			}
			return fmt.Errorf("failed to insert time entry: %w", err)
		}
	} else {
		query := `
			UPDATE time_entries
			SET clock_in = ?, clock_out = ?, lunch_break = ?, short_breaks = ?,
			    status = ?, total_hours = ?, auto_closed = ?, last_modified = ?, version = ?
			WHERE user_id = ? AND entry_date = ? AND version = ?
		`
		result, err := r.db.ExecContext(ctx, query,
			e.ClockIn,
			e.ClockOut,
			lunch,
			shorts,
			e.Status,
			e.TotalHours,
			e.AutoClosed,
			e.LastModified,
			newVersion,
			e.UserID,
			e.Date,
			expectedVersion,
		)
		if err != nil {
			if isCheckViolation(err) {
				return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
			}
			return fmt.Errorf("failed to update time entry: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			var exists bool
			checkQuery := `SELECT EXISTS(SELECT 1 FROM time_entries WHERE user_id = ? AND entry_date = ?)`
			if err := r.db.QueryRowContext(ctx, checkQuery, e.UserID, e.Date).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check time entry existence: %w", err)
			}
			if !exists {
				return repository.ErrNotFound
			}
			// Entry exists but version doesn't match - conflict
			return repository.ErrConflict
		}
	}

	e.Version = newVersion
	r.db.feed.Publish(entry.Change{UserID: e.UserID, Date: e.Date, Version: newVersion})
	return nil
}

// ListRange returns a user's entries between two day keys, inclusive
func (r *EntryRepository) ListRange(ctx context.Context, userID, from, to string) ([]entry.TimeEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM time_entries
		WHERE user_id = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date`
	return r.list(ctx, query, userID, from, to)
}

// ListOpen returns entries with an unfinished session
func (r *EntryRepository) ListOpen(ctx context.Context, opts repository.ListOpenOptions) ([]entry.TimeEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM time_entries
		WHERE status IN ('CLOCKED_IN', 'ON_LUNCH', 'ON_BREAK')`

	args := []any{}
	conditions := []string{}
	if opts.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, opts.UserID)
	}
	if opts.Before != "" {
		conditions = append(conditions, "entry_date < ?")
		args = append(args, opts.Before)
	}
	if len(conditions) > 0 {
		query += " AND " + joinConditions(conditions)
	}

	query += " ORDER BY entry_date, user_id"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	return r.list(ctx, query, args...)
}

// Subscribe registers fn for entry changes
func (r *EntryRepository) Subscribe(fn func(entry.Change)) func() {
	return r.db.Subscribe(fn)
}

func (r *EntryRepository) list(ctx context.Context, query string, args ...any) ([]entry.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := []entry.TimeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entry rows: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*entry.TimeEntry, error) {
	var (
		e        entry.TimeEntry
		clockIn  sql.NullTime
		clockOut sql.NullTime
		lunch    sql.NullString
		shorts   string
		total    sql.NullFloat64
	)
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Date,
		&clockIn,
		&clockOut,
		&lunch,
		&shorts,
		&e.Status,
		&total,
		&e.AutoClosed,
		&e.LastModified,
		&e.Version,
	); err != nil {
		return nil, err
	}

	if clockIn.Valid {
		e.ClockIn = &clockIn.Time
	}
	if clockOut.Valid {
		e.ClockOut = &clockOut.Time
	}
	if total.Valid {
		e.TotalHours = &total.Float64
	}
	if lunch.Valid && lunch.String != "" {
		var b entry.Break
		if err := json.Unmarshal([]byte(lunch.String), &b); err != nil {
			return nil, fmt.Errorf("decoding lunch break: %w", err)
		}
		e.LunchBreak = &b
	}
	e.ShortBreaks = []entry.Break{}
	if shorts != "" {
		if err := json.Unmarshal([]byte(shorts), &e.ShortBreaks); err != nil {
			return nil, fmt.Errorf("decoding short breaks: %w", err)
		}
	}
	return &e, nil
}

func encodeBreaks(e *entry.TimeEntry) (*string, string, error) {
	var lunch *string
	if e.LunchBreak != nil {
		raw, err := json.Marshal(e.LunchBreak)
		if err != nil {
			return nil, "", fmt.Errorf("encoding lunch break: %w", err)
		}
		s := string(raw)
		lunch = &s
	}
	shorts := e.ShortBreaks
	if shorts == nil {
		shorts = []entry.Break{}
	}
	raw, err := json.Marshal(shorts)
	if err != nil {
		return nil, "", fmt.Errorf("encoding short breaks: %w", err)
	}
	return lunch, string(raw), nil
}
