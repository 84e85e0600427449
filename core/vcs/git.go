// Package vcs stages, commits, and pushes persisted recipes. The version
// control client is an interface so the commit sequence can run against a
// fake in tests; Git drives the git binary.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gaurav-prasanna/recipepipe/core/config"
)

// StatusEntry is one line of `git status --porcelain`.
type StatusEntry struct {
	Index    byte
	WorkTree byte
	Path     string
}

// Staged reports whether the entry has changes in the index.
func (e StatusEntry) Staged() bool {
	switch e.Index {
	case ' ', '?', '!':
		return false
	}
	return true
}

// Client is the version-control capability the committer needs.
type Client interface {
	IsWorkTree(ctx context.Context) (bool, error)
	Add(ctx context.Context, paths ...string) error
	Status(ctx context.Context) ([]StatusEntry, error)
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, remote string) error
}

// Git runs the git binary in a repository root.
type Git struct {
	Root string
	// Env is appended to the process environment of every git command.
	Env []string
}

// NewGit returns a Git client for root with identity and transport taken
// from cfg. Empty settings are left to git's own configuration.
func NewGit(root string, cfg config.Git) *Git {
	var env []string
	for _, kv := range [][2]string{
		{"GIT_AUTHOR_NAME", cfg.AuthorName},
		{"GIT_AUTHOR_EMAIL", cfg.AuthorEmail},
		{"GIT_COMMITTER_NAME", cfg.CommitterName},
		{"GIT_COMMITTER_EMAIL", cfg.CommitterEmail},
		{"GIT_SSH_COMMAND", cfg.SSHCommand},
	} {
		if kv[1] != "" {
			env = append(env, kv[0]+"="+kv[1])
		}
	}
	return &Git{Root: root, Env: env}
}

func (g *Git) cmd(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Root
	cmd.Env = append(os.Environ(), g.Env...)
	return cmd
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	out, err := g.cmd(ctx, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return string(out), nil
}

// IsWorkTree reports whether Root is inside a git working tree.
func (g *Git) IsWorkTree(ctx context.Context) (bool, error) {
	out, err := g.cmd(ctx, "rev-parse", "--is-inside-work-tree").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)) == "true", nil
}

// Add stages paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	_, err := g.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Status returns the porcelain status of the working tree.
func (g *Git) Status(ctx context.Context) ([]StatusEntry, error) {
	var stdout, stderr bytes.Buffer
	cmd := g.cmd(ctx, "status", "--porcelain")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git status: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseStatus(stdout.String()), nil
}

// ParseStatus parses `git status --porcelain` output.
func ParseStatus(out string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		entries = append(entries, StatusEntry{Index: line[0], WorkTree: line[1], Path: line[3:]})
	}
	return entries
}

// Commit records the index with message.
func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes the current HEAD to remote.
func (g *Git) Push(ctx context.Context, remote string) error {
	_, err := g.run(ctx, "push", remote, "HEAD")
	return err
}
