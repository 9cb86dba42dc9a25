package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ragdesk/internal/duckdb"
	"ragdesk/internal/eval"
)

// LoadResults reads a saved result file. It accepts a model → rows object,
// a backend response envelope {status, results}, or a bare row list, which
// is filed under fallbackModel.
func LoadResults(path, fallbackModel string) (eval.ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseResults(data, fallbackModel)
}

// ParseResults decodes the formats accepted by LoadResults.
func ParseResults(data []byte, fallbackModel string) (eval.ResultSet, error) {
	var value eval.JSONValue
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if value.Kind == eval.JSONObject {
		if _, ok := value.Field("status"); ok {
			if inner, ok := value.Field("results"); ok {
				value = inner
			}
		}
	}
	if value.Kind == eval.JSONArray {
		if fallbackModel == "" {
			fallbackModel = "model"
		}
		return eval.Single(fallbackModel, eval.RowsFromValue(value)), nil
	}
	return eval.ResultSetFromValue(value)
}

// ResolveSnapshot loads an archived snapshot by id, or the newest one when
// ref is empty or "latest".
func ResolveSnapshot(ctx context.Context, db *sql.DB, ref string) (duckdb.SnapshotRecord, eval.ResultSet, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "latest" {
		list, err := duckdb.ListSnapshots(ctx, db)
		if err != nil {
			return duckdb.SnapshotRecord{}, nil, err
		}
		if len(list) == 0 {
			return duckdb.SnapshotRecord{}, nil, fmt.Errorf("no snapshots archived")
		}
		ref = list[0].ID
	}
	return duckdb.LoadSnapshot(ctx, db, ref)
}
