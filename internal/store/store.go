package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"fnsearch/internal/fncache"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const functionCacheSize = 4096

var ErrRepositoryNotFound = errors.New("store: repository not found")

// Store persists repositories and their exported functions either in
// Postgres or, without a DSN, in a single JSON file.
type Store struct {
	path string
	db   *sql.DB

	mu     sync.RWMutex
	data   fileData
	loaded fs.FileInfo

	schemaOnce sync.Once
	schemaErr  error

	fnCache *lru.Cache[int64, CompleteFunction]
}

func New(path string) *Store {
	return &Store{
		path:    strings.TrimSpace(path),
		data:    newFileData(),
		fnCache: mustCache(),
	}
}

func NewPostgres(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db, fnCache: mustCache()}, nil
}

// Open picks the Postgres backend when dsn is set and the file backend
// otherwise.
func Open(ctx context.Context, dsn, path string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return New(path), nil
	}
	return NewPostgres(ctx, dsn)
}

func mustCache() *lru.Cache[int64, CompleteFunction] {
	c, err := lru.New[int64, CompleteFunction](functionCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// Backend names the active backend for logs.
func (s *Store) Backend() string {
	if s.db != nil {
		return "postgres"
	}
	return "file"
}

// Migrate creates the schema, or loads the JSON file if it changed.
func (s *Store) Migrate(ctx context.Context) error {
	if s.db != nil {
		return s.ensureSchema(ctx)
	}
	return s.ensureLoadedFile()
}

// UpsertRepository inserts repo or updates the URL and version of the
// repository with the same name, and returns its id.
func (s *Store) UpsertRepository(ctx context.Context, repo Repository) (int32, error) {
	repo = normalizeRepository(repo)
	if repo.Name == "" {
		return 0, fmt.Errorf("store: repository name is empty")
	}
	if s.db != nil {
		return s.upsertRepositoryDB(ctx, repo)
	}
	return s.upsertRepositoryFile(repo)
}

// ReplaceFunctions drops every function of repoID and inserts fns in one
// step. It returns the new ids in the order of fns.
func (s *Store) ReplaceFunctions(ctx context.Context, repoID int32, fns []NewFunction) ([]int64, error) {
	normalized := make([]NewFunction, len(fns))
	for i, fn := range fns {
		normalized[i] = normalizeFunction(fn)
	}
	var (
		ids     []int64
		removed []int64
		err     error
	)
	if s.db != nil {
		ids, removed, err = s.replaceFunctionsDB(ctx, repoID, normalized)
	} else {
		ids, removed, err = s.replaceFunctionsFile(repoID, normalized)
	}
	if err != nil {
		return nil, err
	}
	for _, id := range removed {
		s.fnCache.Remove(id)
	}
	return ids, nil
}

// AllSignatures enumerates every persisted (signature, id) pair.
func (s *Store) AllSignatures(ctx context.Context) ([]fncache.SignaturePair, error) {
	if s.db != nil {
		return s.allSignaturesDB(ctx)
	}
	return s.allSignaturesFile()
}

// GetFunctions returns the functions with the given ids, joined with their
// repository, in the order of ids. Unknown ids are skipped.
func (s *Store) GetFunctions(ctx context.Context, ids []int64) ([]CompleteFunction, error) {
	found := make(map[int64]CompleteFunction, len(ids))
	var missing []int64
	for _, id := range ids {
		if fn, ok := s.fnCache.Get(id); ok {
			found[id] = fn
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) > 0 {
		var (
			loaded []CompleteFunction
			err    error
		)
		if s.db != nil {
			loaded, err = s.getFunctionsDB(ctx, missing)
		} else {
			loaded, err = s.getFunctionsFile(missing)
		}
		if err != nil {
			return nil, err
		}
		for _, fn := range loaded {
			found[fn.FuncID] = fn
			s.fnCache.Add(fn.FuncID, fn)
		}
	}

	out := make([]CompleteFunction, 0, len(ids))
	for _, id := range ids {
		if fn, ok := found[id]; ok {
			out = append(out, fn)
		}
	}
	return out, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
