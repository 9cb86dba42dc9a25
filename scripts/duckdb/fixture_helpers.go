package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ragdesk/internal/eval"
)

// fixtureResults builds deterministic result rows for one snapshot. Every
// model answers every question; scores drift with the snapshot index so
// repeated snapshots never share a fingerprint.
func fixtureResults(cfg fixtureConfig, metricNames []string, snapshot int) (eval.ResultSet, error) {
	payload := make(map[string][]map[string]interface{}, len(cfg.Models))
	for m, model := range cfg.Models {
		rows := make([]map[string]interface{}, 0, cfg.Rows)
		for q := 0; q < cfg.Rows; q++ {
			row := map[string]interface{}{
				"id":           q + 1,
				"question":     fmt.Sprintf("%s question %d", cfg.Name, q+1),
				"answer":       fmt.Sprintf("%s answer %d", model, q+1),
				"ground_truth": fmt.Sprintf("reference %d", q+1),
			}
			for k, name := range metricNames {
				row[name] = fixtureScore(snapshot, m, q, k)
			}
			rows = append(rows, row)
		}
		payload[model] = rows
	}
	// Map keys marshal sorted; re-order to the configured model order.
	ordered := make([]byte, 0, 1024)
	ordered = append(ordered, '{')
	for i, model := range cfg.Models {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		key, err := json.Marshal(model)
		if err != nil {
			return nil, err
		}
		rows, err := json.Marshal(payload[model])
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, key...)
		ordered = append(ordered, ':')
		ordered = append(ordered, rows...)
	}
	ordered = append(ordered, '}')

	var results eval.ResultSet
	if err := json.Unmarshal(ordered, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// fixtureScore returns a repeatable score in [0, 1).
func fixtureScore(snapshot, model, question, metric int) float64 {
	n := (snapshot*31 + model*17 + question*7 + metric*3) % 100
	return float64(n) / 100
}

// dirOf returns the parent directory for a file path.
func dirOf(path string) string {
	if path == "" {
		return "."
	}
	if idx := len(path) - 1; idx >= 0 && path[idx] == os.PathSeparator {
		return path
	}
	return filepath.Dir(path)
}

// removeIfExists deletes an existing fixture file so we always start fresh.
func removeIfExists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove existing fixture: %w", err)
		}
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("stat fixture: %w", err)
}
