package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ragdesk/internal/duckdb"
	"ragdesk/internal/metrics"
)

// runArchive builds the handler for the archive command.
func runArchive(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .ragdesk/config.yml)")
		asJSON := fs.Bool("json", false, "Print as JSON")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}
		cfg, root, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		path := archivePath(cfg, root)
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(stderr, "No archive at %s\n", path)
			return ExitError
		}

		ctx, stop := commandContext()
		defer stop()
		db, err := openArchive(ctx, cfg, root)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open archive: %v\n", err)
			return ExitError
		}
		defer db.Close()

		if id := strings.TrimSpace(fs.Arg(0)); id != "" {
			record, _, err := duckdb.LoadSnapshot(ctx, db, id)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load snapshot: %v\n", err)
				return ExitError
			}
			averages, err := duckdb.SnapshotAverages(ctx, db, id)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load averages: %v\n", err)
				return ExitError
			}
			if *asJSON {
				return writeJSON(stdout, struct {
					Snapshot duckdb.SnapshotRecord `json:"snapshot"`
					Averages []duckdb.ModelAverage `json:"averages"`
				}{Snapshot: record, Averages: averages})
			}
			fmt.Fprintf(stdout, "Snapshot %s | %s | %s | %s\n",
				record.ID, record.Mode, categoryLabel(record.Category), record.CreatedAt.Format("2006-01-02 15:04:05"))
			rows := make([][]string, 0, len(averages))
			for _, avg := range averages {
				rows = append(rows, []string{avg.Model, metrics.Label(avg.Metric), averageText(avg.Average, metrics.ScaleAbsolute)})
			}
			fmt.Fprintln(stdout, renderTable([]string{"Model", "Metric", "Mean"}, rows))
			return ExitOK
		}

		list, err := duckdb.ListSnapshots(ctx, db)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to list snapshots: %v\n", err)
			return ExitError
		}
		if *asJSON {
			return writeJSON(stdout, list)
		}
		if len(list) == 0 {
			fmt.Fprintln(stdout, "No snapshots archived.")
			return ExitOK
		}
		rows := make([][]string, 0, len(list))
		for _, record := range list {
			rows = append(rows, []string{
				record.ID,
				record.CreatedAt.Format("2006-01-02 15:04:05"),
				record.Mode,
				record.Category,
				strings.Join(record.Models, ", "),
				strconv.Itoa(record.RowCount),
			})
		}
		fmt.Fprintln(stdout, renderTable([]string{"ID", "Created", "Mode", "Category", "Models", "Rows"}, rows))
		return ExitOK
	}
}
