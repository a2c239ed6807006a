package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"fnsearch/internal/catalog"
	"fnsearch/internal/gateway/app"
	"fnsearch/internal/indexer"
	"fnsearch/internal/repocache"
	"fnsearch/internal/safeio"

	"github.com/spf13/cobra"
)

var syncOpts struct {
	cacheDir string
	workers  int
	only     []string
	notify   string
}

type syncTotals struct {
	mu        sync.Mutex
	synced    int
	failed    int
	functions int
	files     int
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if syncOpts.cacheDir != "" {
		cfg.Scrape.CacheDir = syncOpts.cacheDir
	}
	workers := cfg.Scrape.Workers
	if syncOpts.workers > 0 {
		workers = syncOpts.workers
	}

	pkgs, err := catalog.NewClient(cfg.Scrape.CatalogURL).FetchPackages(ctx)
	if err != nil {
		return err
	}
	jobs := selectJobs(pkgs, syncOpts.only)
	logger.Info("package catalog loaded", "packages", len(pkgs), "selected", len(jobs))

	st, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	artifacts, err := app.ArtifactStore(cfg, nil, "disabled", logger)
	if err != nil {
		return err
	}

	cache := &repocache.Cache{
		Root:    cfg.Scrape.CacheDir,
		GitBin:  cfg.Scrape.GitBin,
		Timeout: cfg.Scrape.GitTimeout.Duration,
		Logger:  logger,
	}
	ix := &indexer.Indexer{Store: st, Artifacts: artifacts, Logger: logger}

	var totals syncTotals
	err = cache.SyncAll(ctx, jobs, workers, func(job repocache.Job, res repocache.Result, err error) {
		if err == nil {
			err = indexOne(ctx, ix, job, res, &totals)
		}
		totals.mu.Lock()
		defer totals.mu.Unlock()
		if err != nil {
			totals.failed++
			return
		}
		totals.synced++
	})
	logger.Info("sync finished",
		"synced", totals.synced,
		"failed", totals.failed,
		"files", totals.files,
		"functions", totals.functions)
	if err != nil {
		return err
	}

	if syncOpts.notify != "" {
		return notifyRefresh(ctx, syncOpts.notify)
	}
	return nil
}

func indexOne(ctx context.Context, ix *indexer.Indexer, job repocache.Job, res repocache.Result, totals *syncTotals) error {
	fsys, err := safeio.NewSafeFS(res.Path)
	if err != nil {
		return err
	}
	rep, err := ix.IndexRepo(ctx, indexer.Target{
		Name:    job.Name,
		URL:     job.Repo.URL,
		Version: job.Repo.Version,
		FS:      fsys,
	})
	if err != nil {
		logger.Warn("index failed", "repo", job.Name, "err", err)
		return err
	}
	totals.mu.Lock()
	totals.files += rep.Files
	totals.functions += rep.Functions
	totals.mu.Unlock()
	return nil
}

func selectJobs(pkgs []catalog.Package, only []string) []repocache.Job {
	want := make(map[string]bool, len(only))
	for _, name := range only {
		if name = strings.TrimSpace(name); name != "" {
			want[name] = true
		}
	}
	jobs := make([]repocache.Job, 0, len(pkgs))
	for _, p := range pkgs {
		if len(want) > 0 && !want[p.Name] {
			continue
		}
		jobs = append(jobs, repocache.Job{Name: p.Name, Repo: p.Repo()})
	}
	return jobs
}

// notifyRefresh asks a running API to rebuild its index.
func notifyRefresh(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/update_functions", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify %s: %w", baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notify %s: status %d", baseURL, resp.StatusCode)
	}
	logger.Info("API index refreshed", "url", baseURL)
	return nil
}
