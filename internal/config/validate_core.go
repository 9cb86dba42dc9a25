package config

import (
	"fmt"
	"net/url"
	"strings"

	"ragdesk/internal/metrics"
	"ragdesk/internal/spec"
)

// Validate checks a config for correctness.
func Validate(cfg *spec.Config) error {
	var found issues

	if cfg.Version == 0 {
		found.add("version", "is required")
	} else if cfg.Version != 1 {
		found.addf("version", "unsupported version %d", cfg.Version)
	}

	validateBackend(cfg.Backend, &found)
	validateSubjects(cfg.Subjects, &found)
	llmIDs := validateLLMs(cfg.LLMs, &found)
	if cfg.DefaultLLM != "" && !llmIDs[cfg.DefaultLLM] {
		found.addf("default_llm", "unknown llm %q", cfg.DefaultLLM)
	}
	validateEvaluation(cfg.Evaluation, &found)
	validateLogging(cfg.Logging, &found)

	return found.err()
}

func validateBackend(cfg spec.BackendConfig, found *issues) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		found.add("backend.base_url", "is required")
	} else if parsed, err := url.Parse(cfg.BaseURL); err != nil || parsed.Host == "" {
		found.addf("backend.base_url", "invalid url %q", cfg.BaseURL)
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		found.addf("backend.base_url", "unsupported scheme %q", parsed.Scheme)
	}
	if cfg.TimeoutSeconds < 0 {
		found.add("backend.timeout_seconds", "must be >= 0")
	}
}

func validateSubjects(subjects []string, found *issues) {
	seen := map[string]bool{}
	for i, subject := range subjects {
		field := fmt.Sprintf("subjects[%d]", i)
		subject = strings.TrimSpace(subject)
		if subject == "" {
			found.add(field, "is required")
			continue
		}
		if seen[subject] {
			found.addf(field, "duplicate subject %q", subject)
		}
		seen[subject] = true
	}
}

func validateLLMs(llms []spec.LLMConfig, found *issues) map[string]bool {
	ids := map[string]bool{}
	for i, llm := range llms {
		field := fmt.Sprintf("llms[%d].id", i)
		id := strings.TrimSpace(llm.ID)
		if id == "" {
			found.add(field, "is required")
			continue
		}
		if ids[id] {
			found.addf(field, "duplicate llm id %q", id)
		}
		ids[id] = true
	}
	return ids
}

func validateEvaluation(cfg spec.EvaluationConfig, found *issues) {
	for i, model := range cfg.Models {
		if strings.TrimSpace(model) == "" {
			found.add(fmt.Sprintf("evaluation.models[%d]", i), "is required")
		}
	}
	if cfg.DefaultCategory != "" {
		if _, ok := metrics.CategoryByKey(cfg.DefaultCategory); !ok {
			found.addf("evaluation.default_category", "unknown category %q", cfg.DefaultCategory)
		}
	}
}

func validateLogging(cfg spec.LoggingConfig, found *issues) {
	switch strings.ToLower(cfg.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		found.addf("logging.level", "unsupported level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "text", "json":
	default:
		found.addf("logging.format", "unsupported format %q", cfg.Format)
	}
}
