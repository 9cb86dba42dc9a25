package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ragdesk/internal/config"
	"ragdesk/internal/spec"
)

// resolveConfigPath normalizes a config path or finds it from CWD.
func resolveConfigPath(configPath string) (string, error) {
	if strings.TrimSpace(configPath) == "" {
		return config.FindConfigPath("")
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return abs, nil
}

// loadConfig loads the config at configPath, or the discovered one. With no
// explicit path and no config on disk it falls back to the defaults rooted
// at the working directory.
func loadConfig(configPath string) (spec.Config, string, error) {
	if strings.TrimSpace(configPath) == "" {
		found, err := config.FindConfigPath("")
		if errors.Is(err, config.ErrConfigNotFound) {
			wd, err := os.Getwd()
			if err != nil {
				return spec.Config{}, "", fmt.Errorf("get working directory: %w", err)
			}
			return config.Default(), wd, nil
		}
		if err != nil {
			return spec.Config{}, "", err
		}
		configPath = found
	}
	resolved, err := resolveConfigPath(configPath)
	if err != nil {
		return spec.Config{}, "", err
	}
	cfg, err := config.Load(resolved)
	if err != nil {
		return spec.Config{}, "", err
	}
	return cfg, config.RootFromConfigPath(resolved), nil
}
