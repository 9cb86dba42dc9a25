package duckdb_test

import (
	"testing"

	"ragdesk/internal/duckdb"
	"ragdesk/internal/duckdb/testing"
)

// TestSchemaObjectsExist verifies archive tables and views are created.
func TestSchemaObjectsExist(t *testing.T) {
	db, _ := openTestDB(t)
	for _, table := range []string{"snapshots", "snapshot_rows", "snapshot_averages"} {
		count := duckdbtesting.QueryInt(t, db, "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", table)
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
	viewCount := duckdbtesting.QueryInt(t, db, "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'v_model_averages' AND table_type = 'VIEW'")
	if viewCount != 1 {
		t.Fatalf("expected view v_model_averages to exist")
	}
}

// TestEnsureSchemaIsIdempotent verifies the DDL can be applied twice.
func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db, ctx := openTestDB(t)
	if err := duckdb.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if err := duckdb.EnsureSchema(ctx, nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
