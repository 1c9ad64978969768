package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully and are repeatable
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.RunMigrations())

	tables := []string{
		"time_entries",
		"preferences",
		"activity_log",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestTimeEntriesConstraints verifies the status check and the one-row-per-day key
func TestTimeEntriesConstraints(t *testing.T) {
	db := NewTestDB(t)

	insert := `INSERT INTO time_entries (id, user_id, entry_date, status, last_modified, version)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, 1)`

	_, err := db.Exec(insert, "e1", "u1", "2026-10-19", "CLOCKED_IN")
	require.NoError(t, err)

	_, err = db.Exec(insert, "e2", "u1", "2026-10-19", "CLOCKED_IN")
	require.Error(t, err, "should fail with duplicate user/day")
	require.True(t, isUniqueViolation(err))

	_, err = db.Exec(insert, "e3", "u1", "2026-10-20", "NAPPING")
	require.Error(t, err, "should fail with invalid status")
	require.True(t, isCheckViolation(err))
}

func TestWithPragmas(t *testing.T) {
	require.Equal(t, "t.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", withPragmas("t.db"))
	require.Equal(t,
		"file:x?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		withPragmas("file:x?mode=memory&cache=shared"))
	require.Equal(t, "t.db?_pragma=journal_mode(WAL)", withPragmas("t.db?_pragma=journal_mode(WAL)"))
}

func TestBusyTimeoutOnEveryConnection(t *testing.T) {
	db, err := New(t.TempDir() + "/busy.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(2)

	conns := make([]*sql.Conn, 0, 2)
	for i := 0; i < 2; i++ {
		conn, err := db.Conn(context.Background())
		require.NoError(t, err)
		conns = append(conns, conn)
	}
	for _, conn := range conns {
		var timeout int
		require.NoError(t, conn.QueryRowContext(context.Background(), "PRAGMA busy_timeout").Scan(&timeout))
		require.Equal(t, 5000, timeout)
		require.NoError(t, conn.Close())
	}
}
