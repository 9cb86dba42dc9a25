package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Project layout. The archive path is relative to the project root, the
// directory that holds .ragdesk.
const (
	ConfigDirName      = ".ragdesk"
	ConfigFileName     = "config.yml"
	DefaultArchivePath = ".ragdesk/archive.duckdb"
)

// ErrConfigNotFound reports that no directory up to the filesystem root
// holds a .ragdesk directory.
var ErrConfigNotFound = errors.New("no .ragdesk/config.yml found")

// ConfigDir returns the .ragdesk directory under root.
func ConfigDir(root string) string {
	return filepath.Join(root, ConfigDirName)
}

// ConfigPath returns the config file path under root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigDirName, ConfigFileName)
}

// RootFromConfigPath returns the project root for a config file: the parent
// of .ragdesk, or the file's own directory for configs kept elsewhere.
func RootFromConfigPath(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) != ConfigDirName {
		return dir
	}
	return filepath.Dir(dir)
}

// ResolveArchivePath returns the archive location for a project. Relative
// paths are taken from root.
func ResolveArchivePath(root, archive string) string {
	if archive == "" {
		archive = DefaultArchivePath
	}
	if filepath.IsAbs(archive) {
		return archive
	}
	return filepath.Join(root, archive)
}

// FindConfigPath walks up from startDir (the working directory when empty)
// to the nearest .ragdesk directory and returns its config file. A .ragdesk
// directory without a config file is an error rather than a reason to keep
// walking. ErrConfigNotFound is returned when the walk reaches the root.
func FindConfigPath(startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	for ; ; dir = filepath.Dir(dir) {
		info, err := os.Stat(ConfigDir(dir))
		if err == nil && info.IsDir() {
			path := ConfigPath(dir)
			switch info, err := os.Stat(path); {
			case os.IsNotExist(err):
				return "", fmt.Errorf("found %s but %s is missing", ConfigDir(dir), ConfigFileName)
			case err != nil:
				return "", fmt.Errorf("stat config: %w", err)
			case info.IsDir():
				return "", fmt.Errorf("config path %q is a directory", path)
			}
			return path, nil
		}
		if filepath.Dir(dir) == dir {
			return "", ErrConfigNotFound
		}
	}
}
