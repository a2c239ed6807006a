package repocache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGit struct {
	mu    sync.Mutex
	calls [][]string
	fail  map[string]error
}

// install swaps runGitCommand for the duration of the test. A "clone" call
// creates its target directory.
func (f *fakeGit) install(t *testing.T) {
	t.Helper()
	orig := runGitCommand
	t.Cleanup(func() { runGitCommand = orig })
	runGitCommand = func(ctx context.Context, gitBin string, args ...string) error {
		f.mu.Lock()
		f.calls = append(f.calls, append([]string{gitBin}, args...))
		f.mu.Unlock()
		for key, err := range f.fail {
			if strings.Contains(strings.Join(args, " "), key) {
				return err
			}
		}
		if len(args) > 0 && args[0] == "clone" {
			return os.MkdirAll(args[len(args)-1], 0o755)
		}
		return nil
	}
}

func TestFromURL(t *testing.T) {
	repo, err := FromURL("https://github.com/elm/core/tree/1.0.5")
	require.NoError(t, err)
	assert.Equal(t, GitRepo{URL: "https://github.com/elm/core", Version: "1.0.5"}, repo)
	assert.Equal(t, "https://github.com/elm/core/tree/1.0.5", repo.String())

	for _, bad := range []string{
		"",
		"https://github.com/elm/core",
		"https://github.com/elm/core/tree/master",
		"git@github.com:elm/core/tree/1.0.5",
	} {
		_, err := FromURL(bad)
		assert.ErrorIs(t, err, ErrInvalidGitURL, bad)
	}
}

func TestPath_ValidatesPackageName(t *testing.T) {
	c := &Cache{Root: "/repos"}
	p, err := c.Path("elm/core")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/repos", "elm", "core"), p)

	for _, bad := range []string{"", "elm", "elm/core/extra", "../x", "elm/..", "./core"} {
		_, err := c.Path(bad)
		assert.Error(t, err, bad)
	}

	_, err = (&Cache{}).Path("elm/core")
	assert.Error(t, err)
}

func TestSync_ClonesThenUpdates(t *testing.T) {
	fg := &fakeGit{}
	fg.install(t)
	c := &Cache{Root: t.TempDir(), GitBin: "/usr/bin/git"}
	repo := GitRepo{URL: "https://github.com/elm/core", Version: "1.0.5"}

	res, err := c.Sync(context.Background(), "elm/core", repo)
	require.NoError(t, err)
	assert.Equal(t, StatusCloned, res.Status)
	assert.DirExists(t, res.Path)

	res, err = c.Sync(context.Background(), "elm/core", repo)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, res.Status)

	require.Len(t, fg.calls, 3)
	assert.Equal(t, []string{"/usr/bin/git", "clone", "--branch", "1.0.5", "--depth", "1", "https://github.com/elm/core", res.Path}, fg.calls[0])
	assert.Equal(t, []string{"/usr/bin/git", "-C", res.Path, "fetch", "--depth", "1", "--tags", "origin"}, fg.calls[1])
	assert.Equal(t, []string{"/usr/bin/git", "-C", res.Path, "reset", "--hard", "1.0.5"}, fg.calls[2])
}

func TestSync_RejectsEmptyVersion(t *testing.T) {
	fg := &fakeGit{}
	fg.install(t)
	c := &Cache{Root: t.TempDir()}
	_, err := c.Sync(context.Background(), "elm/core", GitRepo{URL: "https://github.com/elm/core"})
	assert.ErrorIs(t, err, ErrInvalidGitURL)
	assert.Empty(t, fg.calls)
}

func TestSyncAll_ContinuesPastFailures(t *testing.T) {
	fg := &fakeGit{fail: map[string]error{"broken": errors.New("exit status 128")}}
	fg.install(t)
	c := &Cache{Root: t.TempDir()}

	jobs := []Job{
		{Name: "elm/core", Repo: GitRepo{URL: "https://github.com/elm/core", Version: "1.0.5"}},
		{Name: "someone/broken", Repo: GitRepo{URL: "https://github.com/someone/broken", Version: "1.0.0"}},
		{Name: "elm/json", Repo: GitRepo{URL: "https://github.com/elm/json", Version: "1.1.3"}},
	}
	var mu sync.Mutex
	ok, failed := 0, 0
	err := c.SyncAll(context.Background(), jobs, 2, func(_ Job, _ Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failed++
			return
		}
		ok++
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}

func TestSyncAll_CanceledContext(t *testing.T) {
	fg := &fakeGit{}
	fg.install(t)
	c := &Cache{Root: t.TempDir()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.SyncAll(ctx, []Job{{Name: "elm/core", Repo: GitRepo{URL: "u", Version: "1"}}}, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
