// Package handler serves the search API over the signature index.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fnsearch/internal/artifact"
	"fnsearch/internal/fncache"
	"fnsearch/internal/store"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// FunctionReader resolves index ids into function details.
type FunctionReader interface {
	GetFunctions(ctx context.Context, ids []int64) ([]store.CompleteFunction, error)
}

// Handler holds the collaborators shared by all routes.
type Handler struct {
	Holder    *fncache.Holder
	Functions FunctionReader
	Source    fncache.SignatureSource
	Artifacts artifact.Store

	DefaultLimit int
	MaxLimit     int
	Logger       *slog.Logger
}

func New(holder *fncache.Holder, st *store.Store, artifacts artifact.Store) *Handler {
	return &Handler{
		Holder:       holder,
		Functions:    st,
		Source:       st,
		Artifacts:    artifacts,
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) bounds() (def, hi int) {
	def, hi = h.DefaultLimit, h.MaxLimit
	if def <= 0 {
		def = defaultLimit
	}
	if hi <= 0 {
		hi = maxLimit
	}
	return min(def, hi), hi
}

// limit reads ?limit=, falling back to the default and clamping to the max.
func (h *Handler) limit(r *http.Request) (int, error) {
	def, hi := h.bounds()
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errBadParam("limit")
	}
	return min(n, hi), nil
}

// offset reads ?offset=; nil when the parameter is missing.
func offset(r *http.Request) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("offset"))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, errBadParam("offset")
	}
	return &n, nil
}

type errBadParam string

func (e errBadParam) Error() string { return "invalid " + string(e) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
