package handler

import (
	"errors"
	"net/http"
	"strings"

	"fnsearch/internal/artifact"
)

// HandleExportsList serves GET /exports/{owner}/{repo}.
func (h *Handler) HandleExportsList(w http.ResponseWriter, r *http.Request) {
	pkg, ok := packageName(r)
	if !ok || h.Artifacts == nil {
		http.NotFound(w, r)
		return
	}
	paths, err := h.Artifacts.List(r.Context(), pkg)
	if err != nil {
		h.logger().Error("list artifacts", "pkg", pkg, "err", err)
		http.Error(w, "failed to list exports", http.StatusInternalServerError)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	writeJSON(w, http.StatusOK, paths)
}

// HandleExportsGet serves GET /exports/{owner}/{repo}/{path...}.
func (h *Handler) HandleExportsGet(w http.ResponseWriter, r *http.Request) {
	pkg, ok := packageName(r)
	path := strings.TrimSpace(r.PathValue("path"))
	if !ok || path == "" || h.Artifacts == nil {
		http.NotFound(w, r)
		return
	}
	raw, err := h.Artifacts.Get(r.Context(), pkg, path)
	if errors.Is(err, artifact.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger().Error("read artifact", "pkg", pkg, "path", path, "err", err)
		http.Error(w, "failed to read exports", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func packageName(r *http.Request) (string, bool) {
	owner := strings.TrimSpace(r.PathValue("owner"))
	repo := strings.TrimSpace(r.PathValue("repo"))
	if owner == "" || repo == "" {
		return "", false
	}
	return owner + "/" + repo, true
}
