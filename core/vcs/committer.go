package vcs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/config"
	"github.com/gaurav-prasanna/recipepipe/core/lockfile"
)

// Outcome describes what the commit step did.
type Outcome string

const (
	OutcomeDisabled  Outcome = "disabled"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomePushed    Outcome = "pushed"
)

// LockName is the commit lock file name inside the repository's .git directory.
const LockName = "recipe-commit.lock"

const untitled = "Untitled recipe"

// LockPath returns the commit lock path for repoRoot.
func LockPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", LockName)
}

// Committer runs the guarded stage, commit, and push sequence.
type Committer struct {
	client   Client
	lockPath string
	remote   string
	message  *template.Template
	logger   *slog.Logger
}

// NewCommitter creates a Committer for the repository at repoRoot.
func NewCommitter(client Client, repoRoot string, cfg config.Git, logger *slog.Logger) (*Committer, error) {
	text := cfg.MessageTemplate
	if strings.TrimSpace(text) == "" {
		text = config.DefaultCommitTemplate
	}
	tmpl, err := template.New("commit").Parse(text)
	if err != nil {
		return nil, core.NewConfigError(fmt.Sprintf("invalid commit template: %v", err))
	}

	remote := cfg.Remote
	if remote == "" {
		remote = config.DefaultRemote
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Committer{
		client:   client,
		lockPath: LockPath(repoRoot),
		remote:   remote,
		message:  tmpl,
		logger:   logger,
	}, nil
}

// CommitMessage renders the commit message for a recipe title.
func (c *Committer) CommitMessage(title string) (string, error) {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		title = untitled
	}
	var buf bytes.Buffer
	if err := c.message.Execute(&buf, struct{ Title string }{title}); err != nil {
		return "", fmt.Errorf("rendering commit message: %w", err)
	}
	return buf.String(), nil
}

// Commit stages filePath, commits it, and pushes, holding the commit lock
// throughout. A held lock fails at once. Every failure is a git-kind error
// and the lock is released on every path.
func (c *Committer) Commit(ctx context.Context, filePath, title string) (Outcome, error) {
	lock, err := lockfile.TryAcquire(c.lockPath)
	if err != nil {
		c.logger.Warn("commit lock unavailable", "lock", c.lockPath, "error", err)
		return "", core.NewGitError(fmt.Errorf("commit lock: %w", err))
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			c.logger.Error("releasing commit lock", "lock", c.lockPath, "error", rerr)
		}
	}()

	outcome, err := c.commitLocked(ctx, filePath, title)
	if err != nil {
		return "", core.NewGitError(err)
	}
	return outcome, nil
}

func (c *Committer) commitLocked(ctx context.Context, filePath, title string) (Outcome, error) {
	ok, err := c.client.IsWorkTree(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("not a git working tree")
	}

	if err := c.client.Add(ctx, filePath); err != nil {
		return "", err
	}

	entries, err := c.client.Status(ctx)
	if err != nil {
		return "", err
	}
	if !anyStaged(entries) {
		c.logger.Info("no staged changes, skipping commit", "file", filePath)
		return OutcomeUnchanged, nil
	}

	msg, err := c.CommitMessage(title)
	if err != nil {
		return "", err
	}
	if err := c.client.Commit(ctx, msg); err != nil {
		return "", err
	}
	if err := c.client.Push(ctx, c.remote); err != nil {
		return "", err
	}

	c.logger.Info("recipe committed", "file", filePath, "remote", c.remote)
	return OutcomePushed, nil
}

func anyStaged(entries []StatusEntry) bool {
	for _, e := range entries {
		if e.Staged() {
			return true
		}
	}
	return false
}
