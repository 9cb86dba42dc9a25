package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// addGitignoreEntry appends path, relative to repoRoot, to the repo's
// .gitignore. It reports false when an equivalent entry is already there.
func addGitignoreEntry(repoRoot, path string) (bool, error) {
	entry, err := gitignoreEntry(repoRoot, path)
	if err != nil {
		return false, err
	}
	file := filepath.Join(repoRoot, ".gitignore")
	existing, err := os.ReadFile(file)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read .gitignore: %w", err)
	}
	lines := bufio.NewScanner(bytes.NewReader(existing))
	for lines.Scan() {
		if strings.TrimPrefix(strings.TrimSpace(lines.Text()), "/") == entry {
			return false, nil
		}
	}

	var out bytes.Buffer
	out.Write(existing)
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		out.WriteByte('\n')
	}
	out.WriteString(entry + "\n")
	if err := os.WriteFile(file, out.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write .gitignore: %w", err)
	}
	return true, nil
}

// gitignoreEntry returns path as a slash-separated path inside repoRoot.
func gitignoreEntry(repoRoot, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("gitignore entry is empty")
	}
	rel := filepath.Clean(path)
	if filepath.IsAbs(rel) {
		var err error
		if rel, err = filepath.Rel(repoRoot, rel); err != nil {
			return "", fmt.Errorf("resolve %q: %w", path, err)
		}
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the repo root", path)
	}
	return filepath.ToSlash(rel), nil
}
