package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"ragdesk/internal/backend"
)

// runLogs builds the handler for the logs command.
func runLogs(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		limit := fs.Int("limit", backend.DefaultLogLimit, "Number of records to fetch")
		level := fs.String("level", backend.LevelAll, "Level filter (ALL for any)")
		search := fs.String("search", "", "Case-insensitive text filter")
		asJSON := fs.Bool("json", false, "Print entries as JSON")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if !noArgs(cmd, fs, stderr) {
			return ExitUsage
		}
		sess, err := common.open(stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		ctx, stop := commandContext()
		defer stop()
		entries, err := sess.client.Logs(ctx, *limit)
		if err != nil {
			return reportFailure(stderr, err, "Failed to load logs")
		}
		filtered := backend.FilterLogs(entries, strings.ToUpper(strings.TrimSpace(*level)), *search)
		if *asJSON {
			return writeJSON(stdout, struct {
				Total   int                `json:"total"`
				Entries []backend.LogEntry `json:"entries"`
			}{Total: len(entries), Entries: filtered})
		}
		rows := make([][]string, 0, len(filtered))
		for _, entry := range filtered {
			rows = append(rows, []string{
				entry.Timestamp(),
				entry.Level(),
				entry.Event(),
				entry.Subject(),
				truncate(entry.Question(), questionWidth),
				entry.Details(),
			})
		}
		fmt.Fprintln(stdout, renderTable([]string{"Timestamp", "Level", "Event", "Subject", "Question", "Details"}, rows))
		fmt.Fprintf(stdout, "Showing %d of %d entries\n", len(filtered), len(entries))
		return ExitOK
	}
}
