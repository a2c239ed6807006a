package artifact

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type CacheConfig struct {
	BlobTTL        time.Duration
	BlobMaxEntries int
	ListTTL        time.Duration
	ListMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		BlobTTL:        5 * time.Minute,
		BlobMaxEntries: 1024,
		ListTTL:        30 * time.Second,
		ListMaxEntries: 512,
	}
}

type MetricsSnapshot struct {
	BlobHits      uint64 `json:"blob_hits"`
	BlobMisses    uint64 `json:"blob_misses"`
	ListHits      uint64 `json:"list_hits"`
	ListMisses    uint64 `json:"list_misses"`
	OriginReadErr uint64 `json:"origin_read_err"`
}

// CachedStore is a read-through cache in front of another Store. Writes go
// to the origin first and then refresh the cache.
type CachedStore struct {
	origin Store

	blobCache *expirable.LRU[string, []byte]
	listCache *expirable.LRU[string, []string]

	blobHits, blobMisses, listHits, listMisses, originReadErr atomic.Uint64
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.BlobTTL <= 0 {
		cfg.BlobTTL = def.BlobTTL
	}
	if cfg.BlobMaxEntries <= 0 {
		cfg.BlobMaxEntries = def.BlobMaxEntries
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	if cfg.ListMaxEntries <= 0 {
		cfg.ListMaxEntries = def.ListMaxEntries
	}
	return &CachedStore{
		origin:    origin,
		blobCache: expirable.NewLRU[string, []byte](cfg.BlobMaxEntries, nil, cfg.BlobTTL),
		listCache: expirable.NewLRU[string, []string](cfg.ListMaxEntries, nil, cfg.ListTTL),
	}
}

func (s *CachedStore) Put(ctx context.Context, pkg, path string, content []byte) error {
	if err := s.origin.Put(ctx, pkg, path, content); err != nil {
		return err
	}
	s.blobCache.Add(cacheKey(pkg, path), append([]byte(nil), content...))
	s.listCache.Remove(strings.TrimSpace(pkg))
	return nil
}

func (s *CachedStore) Get(ctx context.Context, pkg, path string) ([]byte, error) {
	key := cacheKey(pkg, path)
	if raw, ok := s.blobCache.Get(key); ok {
		s.blobHits.Add(1)
		return append([]byte(nil), raw...), nil
	}
	s.blobMisses.Add(1)
	raw, err := s.origin.Get(ctx, pkg, path)
	if err != nil {
		s.originReadErr.Add(1)
		return nil, err
	}
	s.blobCache.Add(key, append([]byte(nil), raw...))
	return raw, nil
}

func (s *CachedStore) List(ctx context.Context, pkg string) ([]string, error) {
	pkg = strings.TrimSpace(pkg)
	if list, ok := s.listCache.Get(pkg); ok {
		s.listHits.Add(1)
		return append([]string(nil), list...), nil
	}
	s.listMisses.Add(1)
	list, err := s.origin.List(ctx, pkg)
	if err != nil {
		s.originReadErr.Add(1)
		return nil, err
	}
	s.listCache.Add(pkg, append([]string(nil), list...))
	return list, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		BlobHits:      s.blobHits.Load(),
		BlobMisses:    s.blobMisses.Load(),
		ListHits:      s.listHits.Load(),
		ListMisses:    s.listMisses.Load(),
		OriginReadErr: s.originReadErr.Load(),
	}
}

func cacheKey(pkg, path string) string {
	return strings.TrimSpace(pkg) + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}
