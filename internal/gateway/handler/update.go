package handler

import (
	"context"
	"io"
	"net/http"
)

// HandleUpdate rebuilds the index from the store. Searches keep using the
// previous index until the new one is installed.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.Refresh(r.Context()); err != nil {
		h.logger().Error("refresh index", "err", err)
		http.Error(w, "failed to refresh index", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "OK")
}

// Refresh reloads every signature and swaps the index in.
func (h *Handler) Refresh(ctx context.Context) error {
	st, err := h.Holder.Refresh(ctx, h.Source)
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		return err
	}
	refreshTotal.WithLabelValues("ok").Inc()
	indexSignatures.Set(float64(st.Signatures))
	indexFunctions.Set(float64(st.Functions))
	return nil
}
