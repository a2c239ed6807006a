package fncache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// SignatureSource supplies every (signature, id) pair of the corpus.
type SignatureSource interface {
	AllSignatures(ctx context.Context) ([]SignaturePair, error)
}

// Stats describes the active snapshot.
type Stats struct {
	Signatures int       `json:"signatures"`
	Functions  int       `json:"functions"`
	Generation uint64    `json:"generation"`
	BuiltAt    time.Time `json:"built_at"`
}

type snapshot struct {
	index      *Index
	generation uint64
	builtAt    time.Time
}

// Holder owns the active Index. The lock guards only the snapshot pointer;
// searches run on the returned *Index without holding it.
type Holder struct {
	mu   sync.RWMutex
	snap *snapshot

	refresh singleflight.Group
	Logger  *slog.Logger
}

func NewHolder(initial *Index) *Holder {
	if initial == nil {
		initial = Empty()
	}
	return &Holder{snap: &snapshot{index: initial, builtAt: time.Now()}}
}

// Current returns the active index. It stays valid and unchanged for as long
// as the caller uses it, even across a concurrent Replace.
func (h *Holder) Current() *Index {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap.index
}

// Replace installs idx as the active index. Last writer wins.
func (h *Holder) Replace(idx *Index) {
	if idx == nil {
		idx = Empty()
	}
	next := &snapshot{index: idx, builtAt: time.Now()}
	h.mu.Lock()
	next.generation = h.snap.generation + 1
	h.snap = next
	h.mu.Unlock()
}

func (h *Holder) Stats() Stats {
	h.mu.RLock()
	s := h.snap
	h.mu.RUnlock()
	return Stats{
		Signatures: s.index.Len(),
		Functions:  s.index.Functions(),
		Generation: s.generation,
		BuiltAt:    s.builtAt,
	}
}

// Refresh loads all pairs from src, builds a new index and installs it.
// Calls arriving while a refresh is running share its result. The load runs
// detached from ctx cancellation because other callers may be waiting on it.
func (h *Holder) Refresh(ctx context.Context, src SignatureSource) (Stats, error) {
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := h.refresh.Do("refresh", func() (interface{}, error) {
		start := time.Now()
		pairs, err := src.AllSignatures(loadCtx)
		if err != nil {
			return Stats{}, fmt.Errorf("load signatures: %w", err)
		}
		h.Replace(Build(pairs))
		st := h.Stats()
		h.logger().Info("signature index rebuilt",
			"signatures", st.Signatures,
			"functions", st.Functions,
			"generation", st.Generation,
			"duration", time.Since(start))
		return st, nil
	})
	if err != nil {
		return Stats{}, err
	}
	if shared {
		h.logger().Debug("refresh shared with in-flight rebuild")
	}
	return v.(Stats), nil
}

func (h *Holder) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
