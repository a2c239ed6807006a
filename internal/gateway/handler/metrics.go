package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fnsearch_queries_total",
		Help: "Index queries by kind and outcome (hit, miss)",
	}, []string{"kind", "result"})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fnsearch_index_refresh_total",
		Help: "Signature index rebuilds by outcome",
	}, []string{"result"})

	indexSignatures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fnsearch_index_signatures",
		Help: "Distinct signatures in the active index",
	})

	indexFunctions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fnsearch_index_functions",
		Help: "Functions in the active index",
	})
)

func observeQuery(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	queriesTotal.WithLabelValues(kind, result).Inc()
}
