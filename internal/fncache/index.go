package fncache

import (
	"github.com/armon/go-radix"
)

// SignaturePair is one persisted function as seen by the index.
type SignaturePair struct {
	Signature string
	ID        int64
}

// Index maps normalized signatures to the ids of the functions carrying
// them. It is immutable once built and safe for concurrent reads.
type Index struct {
	tree      *radix.Tree
	functions int
}

// Build constructs an Index from a complete enumeration of pairs. Ids keep
// their input order per signature; duplicates and empty signatures are kept.
func Build(pairs []SignaturePair) *Index {
	grouped := make(map[string][]int64)
	for _, p := range pairs {
		grouped[p.Signature] = append(grouped[p.Signature], p.ID)
	}
	tree := radix.New()
	for sig, ids := range grouped {
		tree.Insert(sig, ids)
	}
	return &Index{tree: tree, functions: len(pairs)}
}

// Empty returns an index with no signatures.
func Empty() *Index {
	return &Index{tree: radix.New()}
}

// Search returns up to limit ids stored for sig, starting at offset (nil
// means 0). It reports false when sig is absent or offset is past the end.
func (x *Index) Search(sig string, limit int, offset *int) ([]int64, bool) {
	v, ok := x.tree.Get(sig)
	if !ok {
		return nil, false
	}
	ids := v.([]int64)
	start := 0
	if offset != nil {
		start = *offset
	}
	if start < 0 || start >= len(ids) {
		return nil, false
	}
	end := len(ids)
	if limit >= 0 && start+limit < end {
		end = start + limit
	}
	return ids[start:end:end], true
}

// Suggest returns up to limit distinct signatures that start with prefix,
// in lexical order. A signature equal to prefix is a suggestion of itself.
func (x *Index) Suggest(prefix string, limit int) ([]string, bool) {
	if limit <= 0 {
		return nil, false
	}
	var out []string
	x.tree.WalkPrefix(prefix, func(sig string, _ interface{}) bool {
		out = append(out, sig)
		return len(out) >= limit
	})
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Len is the number of distinct signatures.
func (x *Index) Len() int { return x.tree.Len() }

// Functions is the number of pairs the index was built from.
func (x *Index) Functions() int { return x.functions }
