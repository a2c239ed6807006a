package handler

import (
	"net/http"

	"fnsearch/internal/store"
)

// HandleSearch serves GET /search/{signature}. Unknown signatures and
// offsets past the end answer an empty array.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	sig := r.PathValue("signature")
	limit, err := h.limit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	off, err := offset(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ids, ok := h.Holder.Current().Search(sig, limit, off)
	observeQuery("search", ok)
	if !ok || len(ids) == 0 {
		writeJSON(w, http.StatusOK, []store.CompleteFunction{})
		return
	}

	fns, err := h.Functions.GetFunctions(r.Context(), ids)
	if err != nil {
		h.logger().Error("load functions", "signature", sig, "err", err)
		http.Error(w, "failed to load functions", http.StatusInternalServerError)
		return
	}
	if fns == nil {
		fns = []store.CompleteFunction{}
	}
	writeJSON(w, http.StatusOK, fns)
}

// HandleSuggest serves GET /suggest/{signature}.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.suggest(r.PathValue("signature"), limit))
}

func (h *Handler) suggest(prefix string, limit int) []string {
	out, ok := h.Holder.Current().Suggest(prefix, limit)
	observeQuery("suggest", ok)
	if !ok {
		return []string{}
	}
	return out
}
