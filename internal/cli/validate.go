package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"ragdesk/internal/config"
)

// validateOutput is the --json form of a validation run.
type validateOutput struct {
	Path     string         `json:"path"`
	Valid    bool           `json:"valid"`
	Issues   []config.Issue `json:"issues,omitempty"`
	Error    string         `json:"error,omitempty"`
	Subjects int            `json:"subjects,omitempty"`
	LLMs     int            `json:"llms,omitempty"`
	Backend  string         `json:"backend,omitempty"`
}

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .ragdesk/config.yml)")
		asJSON := flags.Bool("json", false, "Print the result as JSON")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if !noArgs(cmd, flags, stderr) {
			return ExitUsage
		}

		result := validateOutput{}
		path, err := resolveConfigPath(*configPath)
		if err == nil {
			result.Path = path
			cfg, loadErr := config.Load(path)
			if err = loadErr; err == nil {
				result.Valid = true
				result.Subjects = len(cfg.Subjects)
				result.LLMs = len(cfg.LLMs)
				result.Backend = cfg.Backend.BaseURL
			}
		}
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			result.Issues = invalid.Issues
		} else if err != nil {
			result.Error = err.Error()
		}

		if *asJSON {
			if code := writeJSON(stdout, result); code != ExitOK || result.Valid {
				return code
			}
			return ExitError
		}
		if !result.Valid {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Config OK (%d subjects, %d llms, backend %s)\n", result.Subjects, result.LLMs, result.Backend)
		return ExitOK
	}
}
