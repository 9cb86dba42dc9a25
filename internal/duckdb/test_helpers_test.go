package duckdb_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"ragdesk/internal/duckdb/testing"
	"ragdesk/internal/eval"
	"ragdesk/internal/testutil"
)

const (
	testTimeout = 5 * time.Second
)

// openTestDB opens an in-memory DuckDB instance with the schema applied.
func openTestDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx := testutil.Context(t, testTimeout)
	return duckdbtesting.Open(t), ctx
}

// resultSet decodes a model → rows payload.
func resultSet(t *testing.T, payload string) eval.ResultSet {
	t.Helper()
	var set eval.ResultSet
	if err := json.Unmarshal([]byte(payload), &set); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	return set
}
