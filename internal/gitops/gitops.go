// Package gitops records ledger changes as git commits.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who a commit is attributed to.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Repo is a git working tree.
type Repo struct {
	dir string
}

// Open returns a Repo for dir without touching the filesystem.
func Open(dir string) *Repo {
	return &Repo{dir: dir}
}

// Init creates a new repository in the working tree.
func (r *Repo) Init(ctx context.Context) error {
	if _, err := r.run(ctx, nil, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// IsRepo reports whether the working tree has a .git entry.
func (r *Repo) IsRepo() bool {
	_, err := os.Stat(filepath.Join(r.dir, ".git"))
	return err == nil
}

// HasChanges reports whether the working tree differs from HEAD.
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, nil, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// CommitAll stages every change and commits it as author. It returns the
// short hash of the new commit.
func (r *Repo) CommitAll(ctx context.Context, message string, author Author) (string, error) {
	if _, err := r.run(ctx, nil, "add", "-A"); err != nil {
		return "", err
	}

	env := []string{
		"GIT_AUTHOR_NAME=" + author.Name,
		"GIT_AUTHOR_EMAIL=" + author.Email,
		"GIT_COMMITTER_NAME=" + author.Name,
		"GIT_COMMITTER_EMAIL=" + author.Email,
	}
	if _, err := r.run(ctx, env, "commit", "--quiet", "-m", message); err != nil {
		return "", err
	}

	out, err := r.run(ctx, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *Repo) run(ctx context.Context, env []string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(), env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
	}
	return out, nil
}

