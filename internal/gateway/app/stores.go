package app

import (
	"context"
	"fmt"
	"log/slog"

	"fnsearch/internal/artifact"
	"fnsearch/internal/gateway/config"
	"fnsearch/internal/store"
)

// OpenStore picks Postgres when a DSN is configured and the JSON file
// otherwise.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.DB.DSN(), cfg.DB.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Info("function store", "backend", st.Backend())
	return st, nil
}

// ArtifactStore returns the S3 archive when configured. Without S3 it
// returns fallback, which may be nil to disable archiving. Any non-nil
// origin is wrapped in a read-through cache.
func ArtifactStore(cfg *config.Config, fallback artifact.Store, fallbackLabel string, logger *slog.Logger) (artifact.Store, error) {
	var origin artifact.Store
	if cfg.Artifact.S3Config.Enabled() {
		s3Store, err := artifact.NewS3Store(cfg.Artifact.S3Config)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
		}
		logger.Info("artifact store: s3", "bucket", cfg.Artifact.Bucket, "endpoint", cfg.Artifact.Endpoint)
		origin = s3Store
	} else {
		if cfg.Artifact.Enabled {
			logger.Warn("artifact store: s3 config incomplete, using fallback", "fallback", fallbackLabel)
		}
		origin = fallback
	}
	if origin == nil {
		return nil, nil
	}
	return artifact.NewCachedStore(origin, artifact.DefaultCacheConfig()), nil
}
