package duckdbtesting

import (
	"database/sql"
	"testing"
	"time"

	"ragdesk/internal/duckdb"
	"ragdesk/internal/testutil"
)

const (
	defaultTimeout = 2 * time.Second
)

// Open opens an in-memory DuckDB archive with the schema applied, closed at test cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	ctx := testutil.Context(t, defaultTimeout)
	conn, err := duckdb.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// QueryInt returns a single integer value from the database.
func QueryInt(t testing.TB, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	ctx := testutil.Context(t, defaultTimeout)
	var out int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&out); err != nil {
		t.Fatalf("query int failed: %v", err)
	}
	return out
}
