//go:build cucumber

package cucumber

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"ragdesk/internal/cli"
	"ragdesk/internal/config"
)

func (s *featureState) aValidConfiguration() error {
	return s.writeConfig("http://localhost:8000")
}

func (s *featureState) aConfigurationWithBackendURL(url string) error {
	return s.writeConfig(url)
}

func (s *featureState) writeConfig(url string) error {
	dir, err := os.MkdirTemp("", "ragdesk-cucumber-")
	if err != nil {
		return err
	}
	s.dir = dir
	s.configPath = config.ConfigPath(dir)
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0o755); err != nil {
		return err
	}
	body := fmt.Sprintf("version: 1\nbackend:\n  base_url: %q\nsubjects: [\"AI\"]\nllms:\n  - id: groq\n", url)
	return os.WriteFile(s.configPath, []byte(body), 0o644)
}

// iRunCommand runs the CLI in-process. The scenario config is passed with
// --config when one was written.
func (s *featureState) iRunCommand(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 || fields[0] != "ragdesk" {
		return fmt.Errorf("expected a ragdesk command, got %q", command)
	}
	args := fields[1:]
	if s.configPath != "" {
		args = append(args, "--config", s.configPath)
	}
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = cli.Run(args, &s.stdout, &s.stderr)
	return nil
}

func (s *featureState) theExitCodeIs(code int) error {
	if s.exitCode != code {
		return fmt.Errorf("expected exit code %d, got %d (stderr %q)", code, s.exitCode, s.stderr.String())
	}
	return nil
}

func (s *featureState) theExitCodeIsNonZero() error {
	if s.exitCode == 0 {
		return fmt.Errorf("expected non-zero exit code")
	}
	return nil
}

func (s *featureState) theOutputListsCommands(table *godog.Table) error {
	output := s.stdout.String()
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			command := strings.TrimSpace(cell.Value)
			if command == "" {
				continue
			}
			if !strings.Contains(output, command) {
				return fmt.Errorf("expected command %q in output", command)
			}
		}
	}
	return nil
}

func (s *featureState) theOutputContains(text string) error {
	if !strings.Contains(s.stdout.String(), text) {
		return fmt.Errorf("expected %q in output, got %q", text, s.stdout.String())
	}
	return nil
}

func (s *featureState) theErrorOutputContains(text string) error {
	if !strings.Contains(s.stderr.String(), text) {
		return fmt.Errorf("expected %q in error output, got %q", text, s.stderr.String())
	}
	return nil
}
