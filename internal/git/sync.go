// Package git keeps the library directory under version control. Every write
// to the record store can be committed, and pushed when a remote exists.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const commandTimeout = 10 * time.Second

// GitSync commits library changes in baseDir
type GitSync struct {
	baseDir string
	enabled bool
}

// NewGitSync creates a GitSync for the library root; it starts disabled
func NewGitSync(baseDir string) *GitSync {
	return &GitSync{baseDir: baseDir}
}

// Initialize enables syncing when the library is a git repository
func (g *GitSync) Initialize() {
	g.enabled = g.IsRepository()
}

// IsEnabled returns true if git sync is available and enabled
func (g *GitSync) IsEnabled() bool {
	return g.enabled && g.IsRepository()
}

// Disable turns syncing off (user preference)
func (g *GitSync) Disable() {
	g.enabled = false
}

// IsRepository reports whether the library root has git initialized
func (g *GitSync) IsRepository() bool {
	_, err := os.Stat(filepath.Join(g.baseDir, ".git"))
	return err == nil
}

// Init creates a repository in the library root and commits the current
// state. Caches and the draft are local and stay untracked.
func (g *GitSync) Init(ctx context.Context) error {
	if !g.IsRepository() {
		if _, err := g.run(ctx, "init"); err != nil {
			return err
		}
	}
	ignore := filepath.Join(g.baseDir, ".gitignore")
	if _, err := os.Stat(ignore); os.IsNotExist(err) {
		if err := os.WriteFile(ignore, []byte(".quick-hb/\nlogs/\ndraft.yaml\n"), 0644); err != nil {
			return fmt.Errorf("failed to write .gitignore: %w", err)
		}
	}
	g.enabled = true
	return g.SyncChanges(ctx, "Initialize library")
}

// SyncChanges stages everything, commits with message and pushes when a
// remote is configured. A clean tree is not an error.
func (g *GitSync) SyncChanges(ctx context.Context, message string) error {
	if !g.IsEnabled() {
		return nil
	}

	if _, err := g.run(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	hasChanges, err := g.hasChangesToCommit(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for changes: %w", err)
	}
	if !hasChanges {
		return nil
	}

	if _, err := g.run(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}

	if !g.hasRemote(ctx) {
		return nil
	}
	if _, err := g.run(ctx, "push"); err != nil {
		return fmt.Errorf("committed locally but failed to push: %w", err)
	}
	return nil
}

// PullChanges fetches and merges the remote branch
func (g *GitSync) PullChanges(ctx context.Context) error {
	if !g.IsEnabled() || !g.hasRemote(ctx) {
		return nil
	}
	if _, err := g.run(ctx, "pull", "--ff-only", "origin", g.currentBranch(ctx)); err != nil {
		return fmt.Errorf("failed to pull changes: %w", err)
	}
	return nil
}

// BackgroundSync pulls on every tick until ctx is done. The callback runs
// after each successful pull so callers can reload their caches.
func (g *GitSync) BackgroundSync(ctx context.Context, interval time.Duration, onPull func()) {
	if !g.IsEnabled() || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.PullChanges(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Background sync warning: %v\n", err)
				continue
			}
			if onPull != nil {
				onPull()
			}
		}
	}
}

// Status returns a one-line summary of the repository state
func (g *GitSync) Status(ctx context.Context) (string, error) {
	if !g.IsRepository() {
		return "Git not initialized", nil
	}
	if !g.enabled {
		return "Git sync disabled", nil
	}

	output, err := g.run(ctx, "status", "--porcelain", "--branch")
	if err != nil {
		return "Git status unknown", err
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	switch {
	case strings.Contains(lines[0], "[ahead"):
		return "Changes need to be pushed", nil
	case strings.Contains(lines[0], "[behind"):
		return "Remote has new changes", nil
	case len(lines) > 1:
		return "Uncommitted changes", nil
	case !g.hasRemote(ctx):
		return "Committed locally (no remote)", nil
	default:
		return "In sync", nil
	}
}

func (g *GitSync) hasRemote(ctx context.Context) bool {
	output, err := g.run(ctx, "remote")
	return err == nil && strings.TrimSpace(output) != ""
}

func (g *GitSync) currentBranch(ctx context.Context) string {
	output, err := g.run(ctx, "branch", "--show-current")
	if branch := strings.TrimSpace(output); err == nil && branch != "" {
		return branch
	}
	return "main"
}

// hasChangesToCommit checks if there are staged changes ready to commit
func (g *GitSync) hasChangesToCommit(ctx context.Context) (bool, error) {
	_, err := g.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	// exit code 1 means there are differences
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, err
}

// run executes git in the library root with a timeout
func (g *GitSync) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.baseDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %v", strings.Join(args, " "), commandTimeout)
		}
		return string(output), &commandError{args: args, output: strings.TrimSpace(string(output)), err: err}
	}
	return string(output), nil
}

type commandError struct {
	args   []string
	output string
	err    error
}

func (e *commandError) Error() string {
	return fmt.Sprintf("git %s failed: %s", strings.Join(e.args, " "), e.output)
}

func (e *commandError) Unwrap() error {
	return e.err
}
