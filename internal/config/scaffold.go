package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ragdesk/internal/backend"
)

const defaultConfig = `version: 1
backend:
  base_url: "http://localhost:8000"
  timeout_seconds: 0

subjects:
  - "AI"
  - "DBMS"
  - "Operating Systems"

llms:
  - id: groq
    label: "Groq (Llama 3)"
  - id: gemini
    label: "Gemini"
  - id: ollama
    label: "Ollama (local)"

default_llm: groq

evaluation:
  models: [groq, gemini, ollama]
  default_category: retrieval

server:
  addr: "127.0.0.1:8080"

archive:
  path: ".ragdesk/archive.duckdb"

logging:
  level: info
  format: text
`

// Scaffold writes the default config to configPath, creating its directory.
// A non-empty baseURL replaces the default backend address.
func Scaffold(configPath, baseURL string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content := defaultConfig
	if url := strings.TrimSpace(baseURL); url != "" {
		content = strings.Replace(content, strconv.Quote(backend.DefaultBaseURL), strconv.Quote(url), 1)
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
