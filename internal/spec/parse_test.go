package spec

import "testing"

// TestParseConfigValid verifies valid config parsing succeeds.
func TestParseConfigValid(t *testing.T) {
	data := []byte(`version: 1
backend:
  base_url: "http://localhost:8000"
  timeout_seconds: 120
subjects: ["AI", "DBMS"]
llms:
  - id: groq
    label: "Groq"
  - id: gemini
default_llm: groq
evaluation:
  models: [groq, gemini]
  default_category: retrieval
server:
  addr: ":8080"
archive:
  path: ".ragdesk/archive.duckdb"
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if cfg.Backend.TimeoutSeconds != 120 || len(cfg.Subjects) != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if ids := cfg.LLMIDs(); len(ids) != 2 || ids[1] != "gemini" {
		t.Fatalf("unexpected llm ids %v", ids)
	}
}

// TestParseConfigUnknownField verifies unknown fields are rejected.
func TestParseConfigUnknownField(t *testing.T) {
	data := []byte(`version: 1
backend:
  base_url: "http://localhost:8000"
unknown: true
`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected parse error for unknown field")
	}
}

// TestParseConfigRejectsMultipleDocs verifies multiple YAML docs are rejected.
func TestParseConfigRejectsMultipleDocs(t *testing.T) {
	data := []byte("version: 1\n---\nversion: 1\n")
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected parse error for multiple documents")
	}
}

// TestParseConfigRejectsEmpty verifies a blank file is an error.
func TestParseConfigRejectsEmpty(t *testing.T) {
	if _, err := ParseConfig([]byte("  \n")); err == nil {
		t.Fatalf("expected parse error for empty file")
	}
}
