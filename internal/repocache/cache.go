package repocache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusCloned  = "cloned"
	StatusUpdated = "updated"

	defaultTimeout = 2 * time.Minute
	resetTimeout   = 5 * time.Second
)

// runGitCommand is injectable in tests.
var runGitCommand = func(ctx context.Context, gitBin string, args ...string) error {
	cmd := exec.CommandContext(ctx, gitBin, args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Cache keeps shallow checkouts of package repositories under Root, one
// directory per "owner/repo".
type Cache struct {
	Root    string
	GitBin  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Result describes one synced repository.
type Result struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Status string `json:"status"`
}

// Job is one repository to sync.
type Job struct {
	Name string
	Repo GitRepo
}

// Path returns the checkout directory of a package name.
func (c *Cache) Path(name string) (string, error) {
	owner, repo, ok := splitOwnerRepo(name)
	if !ok {
		return "", fmt.Errorf("repocache: invalid package name %q", name)
	}
	root := strings.TrimSpace(c.Root)
	if root == "" {
		return "", fmt.Errorf("repocache: root is not configured")
	}
	return filepath.Join(root, owner, repo), nil
}

// Sync clones repo at its version, or moves an existing checkout to it.
func (c *Cache) Sync(ctx context.Context, name string, repo GitRepo) (Result, error) {
	target, err := c.Path(name)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(repo.URL) == "" || strings.TrimSpace(repo.Version) == "" {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidGitURL, repo.String())
	}

	if st, err := os.Stat(target); err == nil && st.IsDir() {
		if err := c.git(ctx, c.timeout(), "-C", target, "fetch", "--depth", "1", "--tags", "origin"); err != nil {
			return Result{}, err
		}
		if err := c.git(ctx, resetTimeout, "-C", target, "reset", "--hard", repo.Version); err != nil {
			return Result{}, err
		}
		return Result{Name: name, Path: target, Status: StatusUpdated}, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Result{}, fmt.Errorf("repocache: mkdir: %w", err)
	}
	if err := c.git(ctx, c.timeout(), "clone", "--branch", repo.Version, "--depth", "1", repo.URL, target); err != nil {
		return Result{}, err
	}
	return Result{Name: name, Path: target, Status: StatusCloned}, nil
}

// SyncAll syncs jobs with at most workers concurrent git processes. Each
// outcome is handed to fn; a failing repository does not stop the others.
// The returned error is only the context's.
func (c *Cache) SyncAll(ctx context.Context, jobs []Job, workers int, fn func(Job, Result, error)) error {
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := c.Sync(gctx, job.Name, job.Repo)
			if err != nil {
				c.logger().Warn("repository sync failed", "repo", job.Name, "err", err)
			}
			if fn != nil {
				fn(job, res, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func (c *Cache) git(ctx context.Context, timeout time.Duration, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	bin := strings.TrimSpace(c.GitBin)
	if bin == "" {
		bin = "git"
	}
	return runGitCommand(ctx, bin, args...)
}

func (c *Cache) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
