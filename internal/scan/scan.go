// Package scan enumerates the Elm modules of a package checkout.
package scan

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// skipDirs are never part of a package's published modules.
var skipDirs = map[string]bool{
	".git":         true,
	"elm-stuff":    true,
	"node_modules": true,
	"tests":        true,
	"examples":     true,
	"review":       true,
	"benchmarks":   true,
}

// FileMeta describes one Elm source file.
type FileMeta struct {
	// Path is repo-relative with forward slashes (e.g. "src/Json/Decode.elm").
	Path string
	Size int64
}

// Module returns the dotted module name implied by the path, assuming
// sources live under "src/".
func (f FileMeta) Module() string {
	p := strings.TrimSuffix(f.Path, ".elm")
	p = strings.TrimPrefix(p, "src/")
	return strings.ReplaceAll(p, "/", ".")
}

// ElmFiles walks fsys and returns every ".elm" file in path order.
// Unreadable entries are skipped.
func ElmFiles(fsys fs.FS) ([]FileMeta, error) {
	var out []FileMeta
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if p != "." && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != ".elm" {
			return nil
		}
		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		out = append(out, FileMeta{Path: p, Size: size})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
