package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"ragdesk/internal/backend"
	"ragdesk/internal/config"
	"ragdesk/internal/duckdb"
	"ragdesk/internal/spec"
)

// session is the configuration and backend client a command runs with.
type session struct {
	cfg     spec.Config
	root    string
	client  *backend.Client
	verbose bool
	out     io.Writer
}

// sessionFlags are shared by every backend-bound command.
type sessionFlags struct {
	configPath *string
	backendURL *string
	verbose    *bool
}

func addSessionFlags(fs *flag.FlagSet) sessionFlags {
	return sessionFlags{
		configPath: fs.String("config", "", "Path to config file (default: search for .ragdesk/config.yml)"),
		backendURL: fs.String("backend", "", "Backend base URL (overrides backend.base_url)"),
		verbose:    fs.Bool("verbose", false, "Verbose logging"),
	}
}

// open loads the config and builds the backend client.
func (f sessionFlags) open(stdout io.Writer) (session, error) {
	cfg, root, err := loadConfig(*f.configPath)
	if err != nil {
		return session{}, err
	}
	if url := strings.TrimSpace(*f.backendURL); url != "" {
		cfg.Backend.BaseURL = url
	}
	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	sess := session{
		cfg:     cfg,
		root:    root,
		client:  backend.NewWithTimeout(cfg.Backend.BaseURL, timeout),
		verbose: *f.verbose,
		out:     stdout,
	}
	sess.verbosef("backend %s", sess.client.BaseURL())
	return sess, nil
}

func (s session) verbosef(format string, args ...any) {
	if !s.verbose || s.out == nil {
		return
	}
	fmt.Fprintf(s.out, "[verbose] "+format+"\n", args...)
}

// llm picks choice, else the configured default.
func (s session) llm(choice string) string {
	if trimmed := strings.TrimSpace(choice); trimmed != "" {
		return trimmed
	}
	return s.cfg.DefaultLLM
}

// archivePath resolves the archive location against the project root.
func archivePath(cfg spec.Config, root string) string {
	return config.ResolveArchivePath(root, strings.TrimSpace(cfg.Archive.Path))
}

// openArchive opens the DuckDB archive, creating its directory.
func openArchive(ctx context.Context, cfg spec.Config, root string) (*sql.DB, error) {
	path := archivePath(cfg, root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return duckdb.Open(ctx, path)
}

// commandContext is cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// parseFlags parses args the way validate does. ok is false when the
// command should return code.
func parseFlags(cmd *Command, fs *flag.FlagSet, args []string, stdout, stderr io.Writer) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printCommandUsage(cmd, stdout)
			return ExitOK, false
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	return ExitOK, true
}

// noArgs rejects positional arguments.
func noArgs(cmd *Command, fs *flag.FlagSet, stderr io.Writer) bool {
	if fs.NArg() == 0 {
		return true
	}
	fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
	printCommandUsage(cmd, stderr)
	return false
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// reportFailure prints a backend error. Validation errors are usage errors.
func reportFailure(stderr io.Writer, err error, fallback string) int {
	if backend.IsValidation(err) {
		fmt.Fprintln(stderr, backend.UserMessage(err, fallback))
		return ExitUsage
	}
	message := backend.UserMessage(err, fallback)
	if message == fallback {
		fmt.Fprintln(stderr, fallback)
	} else {
		fmt.Fprintf(stderr, "%s: %s\n", fallback, message)
	}
	return ExitError
}

func writeJSON(w io.Writer, payload any) int {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		fmt.Fprintf(w, "encode output: %v\n", err)
		return ExitError
	}
	return ExitOK
}
