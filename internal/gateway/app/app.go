package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"fnsearch/internal/artifact"
	"fnsearch/internal/fncache"
	"fnsearch/internal/gateway/config"
	"fnsearch/internal/gateway/handler"
	"fnsearch/internal/gateway/server"
	"fnsearch/internal/store"
)

type App struct {
	server  *server.Server
	store   *store.Store
	handler *handler.Handler
	logger  *slog.Logger

	refreshEvery time.Duration
	loopCtx      context.Context
	stop         context.CancelFunc
	loopOnce     sync.Once
}

// New opens the stores and builds the first index. A failed first build is
// fatal; later refreshes keep the previous index on failure.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	artifacts, err := ArtifactStore(cfg, artifact.NewMemoryStore(), "in-memory", logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	holder := fncache.NewHolder(nil)
	holder.Logger = logger
	h := handler.New(holder, st, artifacts)
	h.DefaultLimit = cfg.Web.DefaultLimit
	h.MaxLimit = cfg.Web.MaxLimit
	h.Logger = logger

	if err := h.Refresh(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to build signature index: %w", err)
	}

	mux := server.NewMux(h, cfg.Web.AllowedOrigin, logger)
	loopCtx, stop := context.WithCancel(context.Background())
	return &App{
		server:       server.New(cfg.Web.Port, mux, logger),
		store:        st,
		handler:      h,
		logger:       logger,
		refreshEvery: cfg.Web.RefreshEvery.Duration,
		loopCtx:      loopCtx,
		stop:         stop,
	}, nil
}

func (a *App) Start() error {
	a.startRefreshLoop()
	return a.server.Start()
}

// Serve is Start on an existing listener.
func (a *App) Serve(ln net.Listener) error {
	a.startRefreshLoop()
	return a.server.Serve(ln)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.stop()
	err := a.server.Shutdown(ctx)
	if cerr := a.store.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) startRefreshLoop() {
	if a.refreshEvery <= 0 {
		return
	}
	a.loopOnce.Do(func() { go a.refreshLoop(a.loopCtx) })
}

func (a *App) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(a.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.handler.Refresh(ctx); err != nil {
				a.logger.Warn("periodic index refresh failed", "err", err)
			}
		}
	}
}
