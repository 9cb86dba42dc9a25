package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runFunc runs git with args in dir and returns trimmed stdout.
type runFunc func(ctx context.Context, dir string, args ...string) (string, error)

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Client locates the git checkout a project lives in, so init can keep the
// archive out of version control.
type Client struct {
	run runFunc
}

// NewClient returns a client backed by the git binary.
func NewClient() Client {
	return Client{run: runGit}
}

// DiscoverRepoRoot resolves the git root for startDir using the git binary.
func DiscoverRepoRoot(ctx context.Context, startDir string) (string, error) {
	return NewClient().DiscoverRepoRoot(ctx, startDir)
}

// DiscoverRepoRoot resolves the git root for startDir. An empty startDir
// means the working directory.
func (c Client) DiscoverRepoRoot(ctx context.Context, startDir string) (string, error) {
	dir := strings.TrimSpace(startDir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("discover git root: %w", err)
		}
		dir = wd
	}
	root, err := c.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("discover git root: %w", err)
	}
	if root == "" {
		return "", fmt.Errorf("discover git root: git printed no path for %s", dir)
	}
	return root, nil
}
