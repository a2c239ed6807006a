// Package indexer turns a package checkout into persisted function records.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
	"unicode/utf8"

	"fnsearch/internal/artifact"
	"fnsearch/internal/elm"
	"fnsearch/internal/scan"
	"fnsearch/internal/store"
)

// FunctionStore is the part of store.Store the indexer writes to.
type FunctionStore interface {
	UpsertRepository(ctx context.Context, repo store.Repository) (int32, error)
	ReplaceFunctions(ctx context.Context, repoID int32, fns []store.NewFunction) ([]int64, error)
}

// Target is one package version checked out on disk.
type Target struct {
	Name    string
	URL     string
	Version string
	FS      fs.FS
}

// Report summarizes one IndexRepo call.
type Report struct {
	Files     int `json:"files"`
	Failed    int `json:"failed"`
	Exports   int `json:"exports"`
	Functions int `json:"functions"`
}

// FileError is one file that could not be parsed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *FileError) Unwrap() error { return e.Err }

type Indexer struct {
	Store     FunctionStore
	Artifacts artifact.Store
	Logger    *slog.Logger
}

// IndexRepo parses every Elm module of t and replaces the persisted
// functions of the repository with its exported, signed functions. Files
// that fail to read or parse are counted and skipped.
func (ix *Indexer) IndexRepo(ctx context.Context, t Target) (Report, error) {
	start := time.Now()
	defer func() { repoDuration.Observe(time.Since(start).Seconds()) }()

	files, err := scan.ElmFiles(t.FS)
	if err != nil {
		return Report{}, fmt.Errorf("scan %s: %w", t.Name, err)
	}

	var (
		rep  Report
		fns  []store.NewFunction
		logs = ix.logger().With("repo", t.Name, "version", t.Version)
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Files++
		exports, err := ParseFile(t.FS, f.Path)
		if err != nil {
			rep.Failed++
			filesParsed.WithLabelValues("failed").Inc()
			logs.Debug("skipping unparsable file", "file", f.Path, "err", err)
			continue
		}
		filesParsed.WithLabelValues("ok").Inc()
		rep.Exports += len(exports)
		for _, e := range exports.Functions() {
			fns = append(fns, store.NewFunction{
				Name:          e.Name,
				TypeSignature: e.SignatureString(),
				ReturnType:    e.ReturnType(),
			})
		}
		if err := ix.archive(ctx, t, f, exports); err != nil {
			logs.Warn("archive exports failed", "file", f.Path, "err", err)
		}
	}

	repoID, err := ix.Store.UpsertRepository(ctx, store.Repository{Name: t.Name, URL: t.URL, Version: t.Version})
	if err != nil {
		return rep, err
	}
	ids, err := ix.Store.ReplaceFunctions(ctx, repoID, fns)
	if err != nil {
		return rep, err
	}
	rep.Functions = len(ids)
	functionsIndexed.Add(float64(len(ids)))
	logs.Info("repository indexed",
		"files", rep.Files,
		"failed", rep.Failed,
		"functions", rep.Functions,
		"duration", time.Since(start))
	return rep, nil
}

var errNotUTF8 = errors.New("not valid UTF-8")

// ParseFile reads, parses and resolves one Elm module.
func ParseFile(fsys fs.FS, path string) (elm.Exports, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	if !utf8.Valid(b) {
		return nil, &FileError{Path: path, Err: errNotUTF8}
	}
	spec, decls, err := elm.Parse(string(b))
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return elm.Resolve(spec, decls), nil
}

func (ix *Indexer) archive(ctx context.Context, t Target, f scan.FileMeta, exports elm.Exports) error {
	if ix.Artifacts == nil || len(exports) == 0 {
		return nil
	}
	b, err := json.Marshal(exports)
	if err != nil {
		return err
	}
	return ix.Artifacts.Put(ctx, t.Name, artifact.ExportsPath(t.Version, f.Module()), b)
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger != nil {
		return ix.Logger
	}
	return slog.Default()
}
