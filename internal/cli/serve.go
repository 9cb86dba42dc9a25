package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"strings"

	"ragdesk/internal/frontend"
	"ragdesk/internal/observability"
)

// serveFrontend is a test seam for running the front end server.
var serveFrontend = frontend.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		addr := fs.String("addr", "", "Address to listen on (default: server.addr)")
		archive := fs.Bool("archive", false, "Archive every evaluation to DuckDB")
		logLevel := fs.String("log-level", "", "Log level: debug|info|warn|error (default: logging.level)")
		logFormat := fs.String("log-format", "", "Log format: text|json (default: logging.format)")
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
		listen := strings.TrimSpace(*addr)
		if listen == "" {
			listen = sess.cfg.Server.Addr
		}
		if listen == "" {
			fmt.Fprintln(stderr, "Missing --addr")
			return ExitUsage
		}

		level := firstNonEmpty(*logLevel, sess.cfg.Logging.Level)
		if *common.verbose {
			level = "debug"
		}
		logger := observability.NewLogger(observability.LogConfig{
			Level:  level,
			Format: firstNonEmpty(*logFormat, sess.cfg.Logging.Format),
			Output: stderr,
		})

		ctx, stop := commandContext()
		defer stop()

		var db *sql.DB
		if *archive {
			db, err = openArchive(ctx, sess.cfg, sess.root)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to open archive: %v\n", err)
				return ExitError
			}
			defer db.Close()
		}

		llms := make([]frontend.LLM, 0, len(sess.cfg.LLMs))
		for _, llm := range sess.cfg.LLMs {
			llms = append(llms, frontend.LLM{ID: llm.ID, Label: llm.Label})
		}
		cfg := frontend.Config{
			Addr:     listen,
			Client:   sess.client,
			Metrics:  observability.NewMetrics(),
			Logger:   logger,
			Archive:  db,
			Subjects: sess.cfg.Subjects,
			LLMs:     llms,
			Category: sess.cfg.Evaluation.DefaultCategory,
			Models:   sess.cfg.Evaluation.Models,
		}
		fmt.Fprintf(stdout, "Serving ragdesk at http://%s\n", cfg.Addr)
		if err := serveFrontend(ctx, cfg); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
