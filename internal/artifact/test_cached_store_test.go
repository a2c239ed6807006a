package artifact

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	gets  atomic.Int32
	lists atomic.Int32
	fail  error
}

func (s *countingStore) Get(ctx context.Context, pkg, path string) ([]byte, error) {
	s.gets.Add(1)
	return s.MemoryStore.Get(ctx, pkg, path)
}

func (s *countingStore) List(ctx context.Context, pkg string) ([]string, error) {
	s.lists.Add(1)
	return s.MemoryStore.List(ctx, pkg)
}

func (s *countingStore) Put(ctx context.Context, pkg, path string, content []byte) error {
	if s.fail != nil {
		return s.fail
	}
	return s.MemoryStore.Put(ctx, pkg, path, content)
}

func TestCachedStoreReadThroughAndMetrics(t *testing.T) {
	ctx := context.Background()
	origin := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, origin.MemoryStore.Put(ctx, "elm/core", "exports/1.0.5/List.json", []byte(`[]`)))
	s := NewCachedStore(origin, CacheConfig{BlobTTL: time.Minute, BlobMaxEntries: 8})

	for i := 0; i < 3; i++ {
		b, err := s.Get(ctx, "elm/core", "exports/1.0.5/List.json")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(b))
	}
	assert.Equal(t, int32(1), origin.gets.Load())

	m := s.Metrics()
	assert.Equal(t, uint64(2), m.BlobHits)
	assert.Equal(t, uint64(1), m.BlobMisses)
}

func TestCachedStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewCachedStore(NewMemoryStore(), DefaultCacheConfig())
	require.NoError(t, s.Put(ctx, "a/b", "x.json", []byte("abc")))

	b, err := s.Get(ctx, "a/b", "x.json")
	require.NoError(t, err)
	b[0] = 'z'

	again, err := s.Get(ctx, "a/b", "x.json")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestCachedStorePutInvalidatesList(t *testing.T) {
	ctx := context.Background()
	origin := &countingStore{MemoryStore: NewMemoryStore()}
	s := NewCachedStore(origin, DefaultCacheConfig())

	require.NoError(t, s.Put(ctx, "a/b", "one.json", []byte("1")))
	list, err := s.List(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"one.json"}, list)
	_, err = s.List(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, int32(1), origin.lists.Load())

	require.NoError(t, s.Put(ctx, "a/b", "two.json", []byte("2")))
	list, err = s.List(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"one.json", "two.json"}, list)
	assert.Equal(t, int32(2), origin.lists.Load())
}

func TestCachedStoreFailedPutIsNotCached(t *testing.T) {
	ctx := context.Background()
	origin := &countingStore{MemoryStore: NewMemoryStore(), fail: errors.New("bucket gone")}
	s := NewCachedStore(origin, DefaultCacheConfig())
	require.Error(t, s.Put(ctx, "a/b", "x.json", []byte("1")))

	_, err := s.Get(ctx, "a/b", "x.json")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, uint64(1), s.Metrics().OriginReadErr)
}

func TestMemoryStoreValidatesKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	assert.Error(t, s.Put(ctx, "", "x", nil))
	assert.Error(t, s.Put(ctx, "a/b", " ", nil))
	_, err := s.List(ctx, "")
	assert.Error(t, err)

	require.NoError(t, s.Put(ctx, "/a/b/", "/x.json", []byte("1")))
	b, err := s.Get(ctx, "a/b", "x.json")
	require.NoError(t, err)
	assert.Equal(t, "1", string(b))
}

func TestExportsPath(t *testing.T) {
	assert.Equal(t, "exports/1.0.5/Json/Decode.json", ExportsPath("1.0.5", "Json.Decode"))
}

func TestS3ConfigValidation(t *testing.T) {
	assert.False(t, S3Config{}.Enabled())
	_, err := NewS3Store(S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"})
	assert.Error(t, err)
	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
}
