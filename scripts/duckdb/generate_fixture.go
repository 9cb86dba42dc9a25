package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"ragdesk/internal/duckdb"
	"ragdesk/internal/metrics"
)

// fixtureConfig defines the JSON config for generating an archive fixture.
type fixtureConfig struct {
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Models    []string `json:"models"`
	Snapshots int      `json:"snapshots"`
	Rows      int      `json:"rows"`
}

func main() {
	configPath := flag.String("config", "", "path to fixture config JSON")
	outPath := flag.String("out", "", "output duckdb file path")
	flag.Parse()
	if *configPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: generate_fixture --config <path> --out <duckdb file>")
		os.Exit(2)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(dirOf(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir output dir: %v\n", err)
		os.Exit(1)
	}
	if err := removeIfExists(*outPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ids, err := generateFixture(ctx, *outPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate fixture: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d snapshots to %s\n", len(ids), *outPath)
}

func loadConfig(path string) (fixtureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtureConfig{}, err
	}
	var cfg fixtureConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fixtureConfig{}, err
	}
	return cfg.withDefaults()
}

func (c fixtureConfig) withDefaults() (fixtureConfig, error) {
	if c.Category == "" {
		c.Category = "retrieval"
	}
	if _, ok := metrics.CategoryByKey(c.Category); !ok {
		return c, fmt.Errorf("unknown category %q", c.Category)
	}
	if len(c.Models) == 0 {
		c.Models = []string{"fixture"}
	}
	if c.Snapshots <= 0 {
		c.Snapshots = 1
	}
	if c.Rows <= 0 {
		c.Rows = 10
	}
	return c, nil
}

// generateFixture writes cfg.Snapshots compare snapshots, one minute apart,
// and returns their ids in creation order.
func generateFixture(ctx context.Context, path string, cfg fixtureConfig) ([]string, error) {
	db, err := duckdb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	mode := "compare"
	if len(cfg.Models) == 1 {
		mode = "single"
	}
	names := metrics.MetricsForCategory(cfg.Category)
	startTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, 0, cfg.Snapshots)
	for i := 0; i < cfg.Snapshots; i++ {
		results, err := fixtureResults(cfg, names, i)
		if err != nil {
			return nil, err
		}
		id, _, err := duckdb.SaveSnapshot(ctx, db, duckdb.SnapshotInput{
			Mode:      mode,
			Category:  cfg.Category,
			Results:   results,
			CreatedAt: startTime.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
