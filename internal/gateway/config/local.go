package config

import (
	"time"

	"fnsearch/internal/artifact"
)

func defaults() *Config {
	return &Config{
		Env: "local",
		DB: DBConfig{
			FilePath: "data/functions.json",
		},
		Web: WebConfig{
			Port:          ":8081",
			AllowedOrigin: "*",
			DefaultLimit:  10,
			MaxLimit:      100,
		},
		Scrape: ScrapeConfig{
			CacheDir:   "data/repos",
			GitBin:     "git",
			GitTimeout: Duration{2 * time.Minute},
			Workers:    4,
		},
		Artifact: ArtifactConfig{
			S3Config: artifact.S3Config{Region: "us-east-1", Bucket: "fnsearch-exports"},
		},
		Log: LogConfig{Level: "info", Color: true},
	}
}
