package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fnsearch_indexer_files_total",
		Help: "Elm files processed by result",
	}, []string{"result"})

	functionsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fnsearch_indexer_functions_total",
		Help: "Exported functions persisted",
	})

	repoDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fnsearch_indexer_repo_duration_seconds",
		Help:    "Time to index one repository",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)
