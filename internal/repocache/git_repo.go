package repocache

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

var ErrInvalidGitURL = errors.New("repocache: invalid git url")

var treeURLPattern = regexp.MustCompile(`^(http.+)/tree/([\.\d]+)$`)

// GitRepo is a repository pinned to a released version (a git tag).
type GitRepo struct {
	URL     string `json:"url"`
	Version string `json:"version"`
}

// FromURL parses a browse URL such as
// "https://github.com/elm/core/tree/1.0.5".
func FromURL(raw string) (GitRepo, error) {
	m := treeURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return GitRepo{}, fmt.Errorf("%w: %q", ErrInvalidGitURL, raw)
	}
	return GitRepo{URL: m[1], Version: m[2]}, nil
}

func (r GitRepo) String() string {
	return r.URL + "/tree/" + r.Version
}

// splitOwnerRepo splits a package name such as "elm/core".
func splitOwnerRepo(name string) (owner, repo string, ok bool) {
	parts := strings.Split(strings.Trim(strings.TrimSpace(name), "/"), "/")
	if len(parts) != 2 {
		return "", "", false
	}
	owner = strings.TrimSpace(parts[0])
	repo = strings.TrimSpace(parts[1])
	if validateDirName(owner) != nil || validateDirName(repo) != nil {
		return "", "", false
	}
	return owner, repo, true
}

func validateDirName(name string) error {
	if name == "" {
		return fmt.Errorf("repocache: empty path segment")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("repocache: invalid path segment %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("repocache: %q must be a single path segment", name)
	}
	if path.Clean(name) != name {
		return fmt.Errorf("repocache: invalid path segment %q", name)
	}
	return nil
}
