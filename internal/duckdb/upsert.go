package duckdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
)

// SnapshotInput is one evaluation payload to archive.
type SnapshotInput struct {
	Mode      string
	Category  string
	Results   eval.ResultSet
	CreatedAt time.Time
}

// SnapshotRecord describes an archived snapshot.
type SnapshotRecord struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Mode      string    `json:"mode"`
	Category  string    `json:"category"`
	Models    []string  `json:"models"`
	RowCount  int       `json:"row_count"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotKey returns the dedupe fingerprint for a snapshot: mode, category,
// model order and the ordered payload. Reordering models or rows changes it.
func SnapshotKey(input SnapshotInput) (string, error) {
	payload, err := json.Marshal(input.Results)
	if err != nil {
		return "", err
	}
	models, err := json.Marshal(input.Results.Models())
	if err != nil {
		return "", err
	}
	return fingerprint([]byte(input.Mode), []byte(input.Category), models, payload), nil
}

// SaveSnapshot stores a snapshot with its rows and per-model averages over
// the category metrics. Identical payloads return the existing snapshot id.
func SaveSnapshot(ctx context.Context, db *sql.DB, input SnapshotInput) (string, string, error) {
	if ctx == nil {
		return "", "", errors.New("duckdb: context is nil")
	}
	if db == nil {
		return "", "", errors.New("duckdb: db is nil")
	}
	if input.Mode == "" || input.Category == "" {
		return "", "", errors.New("duckdb: mode and category are required")
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now().UTC()
	}
	key, err := SnapshotKey(input)
	if err != nil {
		return "", "", err
	}
	if existing, err := lookupID(ctx, db, "snapshots", "snapshot_id", "snapshot_key", key); err == nil {
		return existing, key, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("duckdb: lookup snapshot id: %w", err)
	}
	payload, err := json.Marshal(input.Results)
	if err != nil {
		return "", "", err
	}
	models, err := json.Marshal(input.Results.Models())
	if err != nil {
		return "", "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO snapshots (snapshot_id, snapshot_key, mode, category, models, payload, row_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (snapshot_key) DO NOTHING`,
		id, key, input.Mode, input.Category, string(models), string(payload), input.Results.Len(), input.CreatedAt,
	); err != nil {
		return "", "", fmt.Errorf("duckdb: insert snapshot: %w", err)
	}
	if err := insertRows(ctx, tx, id, input.Results); err != nil {
		return "", "", err
	}
	if err := insertAverages(ctx, tx, id, input); err != nil {
		return "", "", err
	}
	if err := tx.Commit(); err != nil {
		return "", "", fmt.Errorf("duckdb: commit snapshot: %w", err)
	}
	return id, key, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, id string, results eval.ResultSet) error {
	for modelPos, entry := range results {
		for rowPos, row := range entry.Rows {
			data, err := json.Marshal(row)
			if err != nil {
				return err
			}
			var rowID interface{}
			if rid := row.ID(); !rid.IsZero() {
				rowID = rid.String()
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO snapshot_rows (snapshot_id, model, model_pos, row_pos, row_id, row_json)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				id, entry.Model, modelPos, rowPos, rowID, string(data),
			); err != nil {
				return fmt.Errorf("duckdb: insert snapshot row: %w", err)
			}
		}
	}
	return nil
}

func insertAverages(ctx context.Context, tx *sql.Tx, id string, input SnapshotInput) error {
	metricNames := metrics.MetricsForCategory(input.Category)
	for model, averages := range metrics.PerModelWithCount(input.Results, input.Results.Models(), metricNames) {
		for metric, avg := range averages {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO snapshot_averages (snapshot_id, model, metric, mean, contributing)
				 VALUES (?, ?, ?, ?, ?)`,
				id, model, metric, avg.Mean, avg.Count,
			); err != nil {
				return fmt.Errorf("duckdb: insert snapshot average: %w", err)
			}
		}
	}
	return nil
}

// LoadSnapshot returns a snapshot and its results in stored model and row order.
func LoadSnapshot(ctx context.Context, db *sql.DB, id string) (SnapshotRecord, eval.ResultSet, error) {
	if db == nil {
		return SnapshotRecord{}, nil, errors.New("duckdb: db is nil")
	}
	record, err := scanSnapshot(db.QueryRowContext(
		ctx,
		`SELECT CAST(snapshot_id AS VARCHAR), snapshot_key, mode, category, CAST(models AS VARCHAR), row_count, created_at
		 FROM snapshots WHERE snapshot_id = CAST(? AS UUID)`,
		id,
	))
	if err != nil {
		return SnapshotRecord{}, nil, fmt.Errorf("duckdb: load snapshot %s: %w", id, err)
	}
	rows, err := db.QueryContext(
		ctx,
		`SELECT model, CAST(row_json AS VARCHAR) FROM snapshot_rows
		 WHERE snapshot_id = CAST(? AS UUID) ORDER BY model_pos, row_pos`,
		id,
	)
	if err != nil {
		return SnapshotRecord{}, nil, fmt.Errorf("duckdb: load snapshot rows: %w", err)
	}
	defer rows.Close()
	byModel := map[string][]eval.Row{}
	for rows.Next() {
		var model, data string
		if err := rows.Scan(&model, &data); err != nil {
			return SnapshotRecord{}, nil, err
		}
		row, err := eval.ParseRow([]byte(data))
		if err != nil {
			return SnapshotRecord{}, nil, fmt.Errorf("duckdb: decode snapshot row: %w", err)
		}
		byModel[model] = append(byModel[model], row)
	}
	if err := rows.Err(); err != nil {
		return SnapshotRecord{}, nil, err
	}
	results := make(eval.ResultSet, 0, len(record.Models))
	for _, model := range record.Models {
		results = append(results, eval.ModelRows{Model: model, Rows: byModel[model]})
	}
	return record, results, nil
}

// ListSnapshots returns archived snapshots, newest first.
func ListSnapshots(ctx context.Context, db *sql.DB) ([]SnapshotRecord, error) {
	if db == nil {
		return nil, errors.New("duckdb: db is nil")
	}
	rows, err := db.QueryContext(
		ctx,
		`SELECT CAST(snapshot_id AS VARCHAR), snapshot_key, mode, category, CAST(models AS VARCHAR), row_count, created_at
		 FROM snapshots ORDER BY created_at DESC, snapshot_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("duckdb: list snapshots: %w", err)
	}
	defer rows.Close()
	var out []SnapshotRecord
	for rows.Next() {
		record, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// ModelAverage is one stored per-model metric mean.
type ModelAverage struct {
	Model   string          `json:"model"`
	Metric  string          `json:"metric"`
	Average metrics.Average `json:"average"`
}

// SnapshotAverages returns the stored averages that had contributing rows.
func SnapshotAverages(ctx context.Context, db *sql.DB, id string) ([]ModelAverage, error) {
	rows, err := db.QueryContext(
		ctx,
		`SELECT model, metric, mean, contributing FROM v_model_averages
		 WHERE snapshot_id = CAST(? AS UUID) ORDER BY model, metric`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("duckdb: snapshot averages: %w", err)
	}
	defer rows.Close()
	var out []ModelAverage
	for rows.Next() {
		var avg ModelAverage
		if err := rows.Scan(&avg.Model, &avg.Metric, &avg.Average.Mean, &avg.Average.Count); err != nil {
			return nil, err
		}
		out = append(out, avg)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(scanner rowScanner) (SnapshotRecord, error) {
	var record SnapshotRecord
	var models string
	if err := scanner.Scan(&record.ID, &record.Key, &record.Mode, &record.Category, &models, &record.RowCount, &record.CreatedAt); err != nil {
		return SnapshotRecord{}, err
	}
	if err := json.Unmarshal([]byte(models), &record.Models); err != nil {
		return SnapshotRecord{}, fmt.Errorf("duckdb: decode snapshot models: %w", err)
	}
	return record, nil
}
