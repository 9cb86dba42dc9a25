package config

import (
	"os"
	"path/filepath"
	"testing"

	"ragdesk/internal/spec"
)

// validConfig returns a minimal config used by validation tests.
func validConfig() spec.Config {
	return spec.Config{
		Version: 1,
		Backend: spec.BackendConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Subjects: []string{"AI", "DBMS"},
		LLMs: []spec.LLMConfig{
			{ID: "groq", Label: "Groq"},
			{ID: "gemini", Label: "Gemini"},
		},
		DefaultLLM: "groq",
		Evaluation: spec.EvaluationConfig{
			Models:          []string{"groq", "gemini"},
			DefaultCategory: "retrieval",
		},
	}
}

func writeConfig(t *testing.T, dir, payload string) string {
	t.Helper()
	path := ConfigPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
