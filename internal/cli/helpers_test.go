package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"ragdesk/internal/config"
)

const evaluatePath = "/evaluate-ragas/"

// writeTestConfig writes a config pointing at backendURL and returns its
// path. The archive lives next to the .ragdesk directory.
func writeTestConfig(t *testing.T, backendURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := config.ConfigPath(dir)
	body := fmt.Sprintf(`version: 1
backend:
  base_url: %q
subjects: ["AI", "DBMS"]
llms:
  - id: groq
    label: Groq
  - id: gemini
default_llm: groq
evaluation:
  models: [groq, gemini]
  default_category: retrieval
archive:
  path: archive.duckdb
`, backendURL)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// runCLI runs args and returns the exit code with captured output.
func runCLI(args ...string) (int, string, string) {
	var out, err bytes.Buffer
	code := Run(args, &out, &err)
	return code, out.String(), err.String()
}
