package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rpggio/timeclock/internal/changefeed"
	"github.com/rpggio/timeclock/internal/domain/entry"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	feed *changefeed.Feed
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", withPragmas(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	if strings.Contains(dataSourceName, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{DB: db, feed: changefeed.New(nil)}, nil
}

// withPragmas makes every pooled connection enforce foreign keys and wait
// for the write lock, which another process (the CLI) may hold briefly.
func withPragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Feed returns the change feed entry writes are published on.
func (db *DB) Feed() *changefeed.Feed {
	return db.feed
}

// Subscribe registers fn for entry changes.
func (db *DB) Subscribe(fn func(entry.Change)) func() {
	return db.feed.Subscribe(fn)
}

// RunMigrations creates the schema if it does not exist yet
func (db *DB) RunMigrations() error {
	migration := `
-- One row per user per calendar day
CREATE TABLE IF NOT EXISTS time_entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    entry_date TEXT NOT NULL,
    clock_in TIMESTAMP,
    clock_out TIMESTAMP,
    lunch_break TEXT,
    short_breaks TEXT NOT NULL DEFAULT '[]',
    status TEXT NOT NULL CHECK(status IN ('NOT_STARTED', 'CLOCKED_IN', 'ON_LUNCH', 'ON_BREAK', 'CLOCKED_OUT')),
    total_hours REAL CHECK(total_hours IS NULL OR total_hours >= 0),
    auto_closed INTEGER NOT NULL DEFAULT 0,
    last_modified TIMESTAMP NOT NULL,
    version INTEGER NOT NULL,
    UNIQUE (user_id, entry_date)
);
CREATE INDEX IF NOT EXISTS idx_entries_status ON time_entries(status, entry_date);

-- Reminder preferences and markers
CREATE TABLE IF NOT EXISTS preferences (
    user_id TEXT PRIMARY KEY,
    eye_care_enabled INTEGER NOT NULL DEFAULT 1,
    eye_care_interval_minutes INTEGER NOT NULL DEFAULT 20,
    clock_out_threshold_hours REAL NOT NULL DEFAULT 10,
    last_eye_care_reminder TIMESTAMP,
    clock_out_reminder_for TIMESTAMP,
    modified_at TIMESTAMP NOT NULL
);

-- Activity log
CREATE TABLE IF NOT EXISTS activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    entry_id TEXT,
    activity_type TEXT NOT NULL,
    summary TEXT NOT NULL,
    details TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_user_activity ON activity_log(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_entry_activity ON activity_log(entry_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
