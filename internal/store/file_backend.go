package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"fnsearch/internal/fncache"
)

type fileData struct {
	Repositories []Repository `json:"repositories"`
	Functions    []Function   `json:"functions"`
	NextRepoID   int32        `json:"next_repo_id"`
	NextFuncID   int64        `json:"next_func_id"`
}

func newFileData() fileData {
	return fileData{NextRepoID: 1, NextFuncID: 1}
}

func (s *Store) ensureLoadedFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncFileLocked()
}

// syncFileLocked re-reads the file when another writer replaced it since the
// last load or save. It must be called with s.mu held for writing.
func (s *Store) syncFileLocked() error {
	if s.path == "" {
		return nil
	}
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if sameVersion(s.loaded, info) {
		return nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	data := newFileData()
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.data = data
	s.loaded = info
	s.fnCache.Purge()
	return nil
}

// saveFile must be called with s.mu held.
func (s *Store) saveFile() error {
	if s.path == "" {
		return nil
	}
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	if info, err := os.Stat(s.path); err == nil {
		s.loaded = info
	}
	return nil
}

// sameVersion reports whether b is the file last loaded or saved as a.
func sameVersion(a, b fs.FileInfo) bool {
	return a != nil && os.SameFile(a, b) && a.ModTime().Equal(b.ModTime()) && a.Size() == b.Size()
}

func (s *Store) upsertRepositoryFile(repo Repository) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncFileLocked(); err != nil {
		return 0, err
	}
	for i, cur := range s.data.Repositories {
		if cur.Name != repo.Name {
			continue
		}
		repo.ID = cur.ID
		s.data.Repositories[i] = repo
		return repo.ID, s.saveFile()
	}
	repo.ID = s.data.NextRepoID
	s.data.NextRepoID++
	s.data.Repositories = append(s.data.Repositories, repo)
	return repo.ID, s.saveFile()
}

func (s *Store) repositoryFile(id int32) (Repository, bool) {
	for _, r := range s.data.Repositories {
		if r.ID == id {
			return r, true
		}
	}
	return Repository{}, false
}

func (s *Store) replaceFunctionsFile(repoID int32, fns []NewFunction) ([]int64, []int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncFileLocked(); err != nil {
		return nil, nil, err
	}
	if _, ok := s.repositoryFile(repoID); !ok {
		return nil, nil, fmt.Errorf("%w: id %d", ErrRepositoryNotFound, repoID)
	}

	kept := s.data.Functions[:0:0]
	var removed []int64
	for _, fn := range s.data.Functions {
		if fn.RepoID == repoID {
			removed = append(removed, fn.ID)
			continue
		}
		kept = append(kept, fn)
	}

	ids := make([]int64, 0, len(fns))
	for _, fn := range fns {
		id := s.data.NextFuncID
		s.data.NextFuncID++
		kept = append(kept, Function{
			ID:            id,
			RepoID:        repoID,
			Name:          fn.Name,
			TypeSignature: fn.TypeSignature,
			ReturnType:    fn.ReturnType,
		})
		ids = append(ids, id)
	}
	s.data.Functions = kept
	return ids, removed, s.saveFile()
}

func (s *Store) allSignaturesFile() ([]fncache.SignaturePair, error) {
	if err := s.ensureLoadedFile(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fncache.SignaturePair, 0, len(s.data.Functions))
	for _, fn := range s.data.Functions {
		out = append(out, fncache.SignaturePair{Signature: fn.TypeSignature, ID: fn.ID})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) getFunctionsFile(ids []int64) ([]CompleteFunction, error) {
	if err := s.ensureLoadedFile(); err != nil {
		return nil, err
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CompleteFunction, 0, len(ids))
	for _, fn := range s.data.Functions {
		if _, ok := want[fn.ID]; !ok {
			continue
		}
		repo, ok := s.repositoryFile(fn.RepoID)
		if !ok {
			continue
		}
		out = append(out, complete(repo, fn))
	}
	return out, nil
}
