package handler

import (
	"net/http"

	"fnsearch/internal/artifact"
	"fnsearch/internal/fncache"
)

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type statsResponse struct {
	Index     fncache.Stats             `json:"index"`
	Artifacts *artifact.MetricsSnapshot `json:"artifacts,omitempty"`
}

// HandleStats reports the active index and, when cached, artifact cache counters.
func (h *Handler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	out := statsResponse{Index: h.Holder.Stats()}
	if m, ok := h.Artifacts.(interface{ Metrics() artifact.MetricsSnapshot }); ok {
		snap := m.Metrics()
		out.Artifacts = &snap
	}
	writeJSON(w, http.StatusOK, out)
}
