// Package testdb provides helpers for integration tests that need a real
// Postgres database. Tests opt in through the DATABASE_URL environment
// variable and run inside a transaction that is rolled back afterwards, so
// they never leave state behind.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"github.com/kanbanlab/taskboard/internal/platform/postgres"
)

// TestTimeout bounds individual test database operations.
const TestTimeout = 5 * time.Second

// IsIntegrationTestEnvironment reports whether a test database is
// configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDatabaseURL returns the database URL for integration tests. It
// checks DATABASE_URL first, then TASKBOARD_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("TASKBOARD_TEST_DB_URL")
}

// GetTestDB opens the test database, applies migrations, and registers a
// cleanup that closes the connection. Tests that call it are skipped when
// no test database is configured.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("skipping: DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	require.NoError(t, postgres.RunMigrations(ctx, db), "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, keeping
// tests isolated from each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
