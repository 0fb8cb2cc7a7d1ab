// Package pgtest provides helpers for tests that need a live
// PostgreSQL instance. Tests skip when TEST_DATABASE is unset.
package pgtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// ConnString returns the test database connection string, skipping the
// test when none is configured.
func ConnString(t testing.TB) string {
	t.Helper()
	conn := os.Getenv("TEST_DATABASE")
	if conn == "" {
		t.Skip("TEST_DATABASE not set")
	}
	return conn
}

// Connect creates a database connection for testing and registers
// cleanup for it.
func Connect(ctx context.Context, t testing.TB) *pgx.Conn {
	t.Helper()
	config, err := pgx.ParseConfig(ConnString(t))
	require.NoError(t, err)

	config.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		t.Logf("PostgreSQL %s: %s", n.Severity, n.Message)
	}

	conn, err := pgx.ConnectConfig(ctx, config)
	require.NoError(t, err)

	t.Cleanup(func() {
		Close(t, conn)
	})

	return conn
}

// Close safely closes a database connection.
func Close(t testing.TB, conn *pgx.Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Close(ctx))
}

// ApplySchema drops any previous kit tables and replays the initial
// migration so each test run starts from a clean schema.
func ApplySchema(ctx context.Context, t testing.TB, conn *pgx.Conn) {
	t.Helper()

	_, err := conn.Exec(ctx, `
		DROP TABLE IF EXISTS aggregate_measurements, raw_measurements,
			peripherals, kit_configurations, kits CASCADE`)
	require.NoError(t, err)

	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	migration := filepath.Join(filepath.Dir(thisFile), "..", "..", "..",
		"migrations", "0001_init.sql")

	ddl, err := os.ReadFile(migration)
	require.NoError(t, err)

	_, err = conn.Exec(ctx, string(ddl))
	require.NoError(t, err)
}
