package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ragdesk/internal/duckdb"
	"ragdesk/internal/eval"
	"ragdesk/internal/report"
	"ragdesk/internal/spec"
)

// buildReportHTML is a test seam for report rendering.
var buildReportHTML = report.BuildReportHTML

// runReport builds the handler for the report command.
func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .ragdesk/config.yml)")
		inputPath := fs.String("input", "", "Saved evaluation results (JSON)")
		snapshot := fs.String("snapshot", "", "Archived snapshot id, or latest")
		model := fs.String("model", "", "Model name for a bare row list")
		category := fs.String("category", "", "Metric category (default: evaluation.default_category)")
		metricList := fs.String("metrics", "", "Comma separated metrics (default: category defaults)")
		scale := fs.String("scale", "pct", "Value scale: pct|abs")
		contexts := fs.Bool("contexts", false, "Include retrieved contexts")
		title := fs.String("title", "", "Report title")
		outputPath := fs.String("output", "report.html", "Report output path")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if !noArgs(cmd, fs, stderr) {
			return ExitUsage
		}
		if (*inputPath == "") == (*snapshot == "") {
			fmt.Fprintln(stderr, "Provide exactly one of --input or --snapshot")
			return ExitUsage
		}
		parsedScale, err := parseScale(*scale)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		cfg, root, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		input := report.Input{
			Title:        *title,
			Category:     strings.TrimSpace(*category),
			Metrics:      splitList(*metricList),
			Scale:        parsedScale,
			ShowContexts: *contexts,
			GeneratedAt:  time.Now(),
		}
		if *inputPath != "" {
			fallback := *model
			if fallback == "" {
				fallback = cfg.DefaultLLM
			}
			results, err := report.LoadResults(*inputPath, fallback)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load results: %v\n", err)
				return ExitError
			}
			input.Results = results
		} else {
			record, results, err := loadArchived(cfg, root, *snapshot)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load snapshot: %v\n", err)
				return ExitError
			}
			input.Results = results
			input.Mode = record.Mode
			if input.Category == "" {
				input.Category = record.Category
			}
		}
		if input.Category == "" {
			input.Category = cfg.Evaluation.DefaultCategory
		}

		html := buildReportHTML(input)
		if html == "" {
			fmt.Fprintln(stderr, "Report rendering failed")
			return ExitError
		}
		if dir := filepath.Dir(*outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Fprintf(stderr, "Failed to create output dir: %v\n", err)
				return ExitError
			}
		}
		if err := os.WriteFile(*outputPath, []byte(html), 0o644); err != nil {
			fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Wrote %s\n", *outputPath)
		return ExitOK
	}
}

// loadArchived reads a snapshot from an existing archive.
func loadArchived(cfg spec.Config, root, ref string) (duckdb.SnapshotRecord, eval.ResultSet, error) {
	path := archivePath(cfg, root)
	if _, err := os.Stat(path); err != nil {
		return duckdb.SnapshotRecord{}, nil, fmt.Errorf("no archive at %s", path)
	}
	ctx, stop := commandContext()
	defer stop()
	db, err := openArchive(ctx, cfg, root)
	if err != nil {
		return duckdb.SnapshotRecord{}, nil, err
	}
	defer db.Close()
	return report.ResolveSnapshot(ctx, db, ref)
}
