package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ragdesk/internal/backend"
	"ragdesk/internal/config"
	"ragdesk/internal/vcs"
)

// runInit builds the handler for the init command.
func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: .ragdesk/config.yml in the git root or CWD)")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if !noArgs(cmd, flags, stderr) {
			return ExitUsage
		}

		fail := func(err error) int {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}
		target, repoRoot, err := initTarget(*configPath)
		if err != nil {
			return fail(err)
		}

		ask := newPrompter(initInput, stdout)
		ok, err := ask.confirm(fmt.Sprintf("Initialize ragdesk config in %s?", filepath.Dir(target)), true)
		if err != nil {
			return fail(err)
		}
		if !ok {
			fmt.Fprintln(stderr, "Init cancelled.")
			return ExitError
		}
		baseURL, err := ask.text("Backend URL", backend.DefaultBaseURL)
		if err != nil {
			return fail(err)
		}
		ignoreArchive := false
		if repoRoot != "" {
			if ignoreArchive, err = ask.confirm("Add the archive to .gitignore?", true); err != nil {
				return fail(err)
			}
		}

		if err := config.Scaffold(target, baseURL); err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", target)

		if ignoreArchive {
			archive := filepath.Join(config.RootFromConfigPath(target), config.DefaultArchivePath)
			updated, err := addGitignoreEntry(repoRoot, archive)
			if err != nil {
				return fail(fmt.Errorf("update .gitignore: %w", err))
			}
			if updated {
				fmt.Fprintf(stdout, "Updated %s\n", filepath.Join(repoRoot, ".gitignore"))
			}
		}
		return ExitOK
	}
}

// initTarget picks the config file to write and the git root around it.
// Without an explicit path the config goes under the git root, else the CWD.
// An existing file is never overwritten.
func initTarget(configPath string) (target, repoRoot string, err error) {
	if configPath = strings.TrimSpace(configPath); configPath == "" {
		repoRoot = discoverGitRoot("")
		base := repoRoot
		if base == "" {
			if base, err = os.Getwd(); err != nil {
				return "", "", err
			}
		}
		target = config.ConfigPath(base)
	} else {
		if target, err = filepath.Abs(configPath); err != nil {
			return "", "", err
		}
		repoRoot = discoverGitRoot(filepath.Dir(target))
	}

	dir := filepath.Dir(target)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return "", "", fmt.Errorf("config directory %q is not a directory", dir)
	}
	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return "", "", fmt.Errorf("config path %q is a directory", target)
	case err == nil:
		return "", "", fmt.Errorf("config file already exists at %q", target)
	case !os.IsNotExist(err):
		return "", "", fmt.Errorf("stat config file: %w", err)
	}
	return target, repoRoot, nil
}

// initInput allows tests to override stdin for init prompts.
var initInput io.Reader = os.Stdin

// discoverGitRoot returns the git root or empty when not found.
var discoverGitRoot = func(startDir string) string {
	root, err := vcs.DiscoverRepoRoot(context.Background(), startDir)
	if err != nil {
		return ""
	}
	return root
}
