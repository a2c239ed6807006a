package store

import (
	"strings"
)

// Repository is one package repository whose functions are indexed.
type Repository struct {
	ID      int32  `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Version string `json:"version"`
}

// NewFunction is an exported function about to be persisted.
type NewFunction struct {
	Name          string `json:"name"`
	TypeSignature string `json:"type_signature"`
	ReturnType    string `json:"return_type,omitempty"`
}

// Function is a persisted function row.
type Function struct {
	ID            int64  `json:"id"`
	RepoID        int32  `json:"repo_id"`
	Name          string `json:"name"`
	TypeSignature string `json:"type_signature"`
	ReturnType    string `json:"return_type,omitempty"`
}

// CompleteFunction is a function joined with its repository, as served to
// search clients.
type CompleteFunction struct {
	RepoID      int32  `json:"repo_id"`
	RepoName    string `json:"repo_name"`
	RepoURL     string `json:"repo_url"`
	FuncID      int64  `json:"func_id"`
	FuncName    string `json:"func_name"`
	FuncTypeSig string `json:"func_type_sig"`
}

func normalizeRepository(r Repository) Repository {
	r.Name = strings.TrimSpace(r.Name)
	r.URL = strings.TrimSpace(r.URL)
	r.Version = strings.TrimSpace(r.Version)
	return r
}

func normalizeFunction(f NewFunction) NewFunction {
	f.Name = strings.TrimSpace(f.Name)
	f.TypeSignature = strings.TrimSpace(f.TypeSignature)
	f.ReturnType = strings.TrimSpace(f.ReturnType)
	return f
}

func complete(repo Repository, fn Function) CompleteFunction {
	return CompleteFunction{
		RepoID:      repo.ID,
		RepoName:    repo.Name,
		RepoURL:     repo.URL,
		FuncID:      fn.ID,
		FuncName:    fn.Name,
		FuncTypeSig: fn.TypeSignature,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}
