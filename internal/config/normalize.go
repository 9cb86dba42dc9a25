package config

import (
	"strings"

	"ragdesk/internal/backend"
	"ragdesk/internal/metrics"
	"ragdesk/internal/spec"
)

// Default values applied by Normalize.
const (
	DefaultServerAddr = "127.0.0.1:8080"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Normalize fills defaults for fields left empty. A zero backend timeout
// means the client waits indefinitely.
func Normalize(cfg *spec.Config) {
	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = backend.DefaultBaseURL
	}
	for i := range cfg.LLMs {
		if cfg.LLMs[i].Label == "" {
			cfg.LLMs[i].Label = cfg.LLMs[i].ID
		}
	}
	if cfg.DefaultLLM == "" && len(cfg.LLMs) > 0 {
		cfg.DefaultLLM = cfg.LLMs[0].ID
	}
	if len(cfg.Evaluation.Models) == 0 && len(cfg.LLMs) > 0 {
		cfg.Evaluation.Models = cfg.LLMIDs()
	}
	if cfg.Evaluation.DefaultCategory == "" {
		if cats := metrics.Categories(); len(cats) > 0 {
			cfg.Evaluation.DefaultCategory = cats[0].Key
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Archive.Path == "" {
		cfg.Archive.Path = DefaultArchivePath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}
