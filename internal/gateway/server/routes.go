package server

import (
	"log/slog"
	"net/http"

	"fnsearch/internal/gateway/handler"
	"fnsearch/internal/gateway/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewMux(h *handler.Handler, allowedOrigin string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Index
	mux.HandleFunc("GET /search/{signature}", h.HandleSearch)
	mux.HandleFunc("GET /suggest/{signature}", h.HandleSuggest)
	mux.HandleFunc("GET /ws/suggest", h.HandleSuggestWS)
	mux.HandleFunc("/update_functions", h.HandleUpdate)

	// Archived exports
	mux.HandleFunc("GET /exports/{owner}/{repo}", h.HandleExportsList)
	mux.HandleFunc("GET /exports/{owner}/{repo}/{path...}", h.HandleExportsGet)

	// Ops
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("GET /stats", h.HandleStats)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.CORS(allowedOrigin, middleware.Access(logger, mux))
}
