// Package artifact archives the resolved exports of indexed packages.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store keeps opaque blobs keyed by package name and a relative path.
type Store interface {
	Put(ctx context.Context, pkg, path string, content []byte) error
	Get(ctx context.Context, pkg, path string) ([]byte, error)
	List(ctx context.Context, pkg string) ([]string, error)
}

var ErrNotFound = errors.New("artifact not found")

// ExportsPath is where the exports of one module of a package version live.
func ExportsPath(version, module string) string {
	return "exports/" + strings.TrimSpace(version) + "/" + strings.ReplaceAll(strings.TrimSpace(module), ".", "/") + ".json"
}

func normalizeKey(pkg, path string) (string, string, error) {
	pkg = strings.Trim(strings.TrimSpace(pkg), "/")
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if pkg == "" {
		return "", "", fmt.Errorf("package is required")
	}
	if path == "" {
		return "", "", fmt.Errorf("path is required")
	}
	return pkg, path, nil
}

func objectKey(pkg, path string) string {
	return pkg + "/" + path
}
