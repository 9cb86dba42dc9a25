package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ragdesk/internal/duckdb"
)

func TestGenerateFixture(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cfg, err := fixtureConfig{Name: "os", Models: []string{"b", "a"}, Snapshots: 3, Rows: 4}.withDefaults()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	path := filepath.Join(t.TempDir(), "archive.duckdb")
	ids, err := generateFixture(ctx, path, cfg)
	if err != nil {
		t.Fatalf("generate fixture: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 snapshot ids, got %v", ids)
	}

	db, err := duckdb.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	records, err := duckdb.ListSnapshots(ctx, db)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 archived snapshots, got %d", len(records))
	}
	_, results, err := duckdb.LoadSnapshot(ctx, db, ids[0])
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if models := results.Models(); len(models) != 2 || models[0] != "b" || models[1] != "a" {
		t.Fatalf("expected configured model order, got %v", models)
	}
	if results.Len() != 8 {
		t.Fatalf("expected 8 rows, got %d", results.Len())
	}
}

func TestFixtureConfigRejectsUnknownCategory(t *testing.T) {
	if _, err := (fixtureConfig{Category: "nope"}).withDefaults(); err == nil {
		t.Fatalf("expected unknown category error")
	}
}
