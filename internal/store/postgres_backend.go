package store

import (
	"context"
	"database/sql"
	"fmt"

	"fnsearch/internal/fncache"
)

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS repositories (
  id SERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  url TEXT NOT NULL,
  version TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS functions (
  id BIGSERIAL PRIMARY KEY,
  repo_id INTEGER NOT NULL REFERENCES repositories (id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  type_signature TEXT NOT NULL,
  return_type TEXT
);
CREATE INDEX IF NOT EXISTS idx_functions_repo_id ON functions (repo_id);
`)
	})
	return s.schemaErr
}

func (s *Store) upsertRepositoryDB(ctx context.Context, repo Repository) (int32, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}
	var id int32
	err := s.db.QueryRowContext(ctx, `
INSERT INTO repositories (name, url, version)
VALUES ($1, $2, $3)
ON CONFLICT (name)
DO UPDATE SET url = EXCLUDED.url, version = EXCLUDED.version
RETURNING id`,
		repo.Name, repo.URL, repo.Version).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert repository %s: %w", repo.Name, err)
	}
	return id, nil
}

func (s *Store) replaceFunctionsDB(ctx context.Context, repoID int32, fns []NewFunction) ([]int64, []int64, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM repositories WHERE id = $1)`, repoID).Scan(&exists); err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: id %d", ErrRepositoryNotFound, repoID)
	}

	removed, err := collectIDs(tx.QueryContext(ctx, `DELETE FROM functions WHERE repo_id = $1 RETURNING id`, repoID))
	if err != nil {
		return nil, nil, fmt.Errorf("delete functions of repository %d: %w", repoID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO functions (repo_id, name, type_signature, return_type)
VALUES ($1, $2, $3, NULLIF($4, ''))
RETURNING id`)
	if err != nil {
		return nil, nil, err
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(fns))
	for _, fn := range fns {
		var id int64
		if err := stmt.QueryRowContext(ctx, repoID, fn.Name, fn.TypeSignature, fn.ReturnType).Scan(&id); err != nil {
			return nil, nil, fmt.Errorf("insert function %s: %w", fn.Name, err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return ids, removed, nil
}

func collectIDs(rows *sql.Rows, err error) ([]int64, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) allSignaturesDB(ctx context.Context) ([]fncache.SignaturePair, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT type_signature, id FROM functions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fncache.SignaturePair, 0, 1024)
	for rows.Next() {
		var p fncache.SignaturePair
		if err := rows.Scan(&p.Signature, &p.ID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanCompleteFunction(row rowScanner) (CompleteFunction, error) {
	var fn CompleteFunction
	err := row.Scan(&fn.RepoID, &fn.RepoName, &fn.RepoURL, &fn.FuncID, &fn.FuncName, &fn.FuncTypeSig)
	return fn, err
}

func (s *Store) getFunctionsDB(ctx context.Context, ids []int64) ([]CompleteFunction, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.name, r.url, f.id, f.name, f.type_signature
FROM functions f
JOIN repositories r ON r.id = f.repo_id
WHERE f.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CompleteFunction, 0, len(ids))
	for rows.Next() {
		fn, err := scanCompleteFunction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
	return out, rows.Err()
}
