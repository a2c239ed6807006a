package safeio

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeFSAllowsAbsoluteUnderRoot(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "Main.elm")
	require.NoError(t, os.WriteFile(p, []byte("module Main exposing (..)"), 0o644))
	fsys, err := NewSafeFS(dir)
	require.NoError(t, err)
	b, err := fsys.SafeReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "module Main exposing (..)", string(b))
}

func TestSafeFSRejectsEscapes(t *testing.T) {
	outer := t.TempDir()
	root := filepath.Join(outer, "repo")
	require.NoError(t, os.MkdirAll(root, 0o755))
	secret := filepath.Join(outer, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("x"), 0o644))
	require.NoError(t, os.Symlink(secret, filepath.Join(root, "link.elm")))

	fsys, err := NewSafeFS(root)
	require.NoError(t, err)

	_, err = fsys.SafeReadFile("../secret.txt")
	assert.Error(t, err)
	_, err = fsys.SafeReadFile(secret)
	assert.Error(t, err)
	_, err = fsys.SafeReadFile("link.elm")
	assert.Error(t, err)
	_, err = fsys.SafeReadFile(".")
	assert.Error(t, err)
}

func TestSafeFSImplementsFS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "Json"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Json", "Decode.elm"), []byte("module Json.Decode exposing (..)"), 0o644))
	fsys, err := NewSafeFS(dir)
	require.NoError(t, err)

	var files []string
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Json/Decode.elm"}, files)

	b, err := fs.ReadFile(fsys, "src/Json/Decode.elm")
	require.NoError(t, err)
	assert.Contains(t, string(b), "Json.Decode")

	_, err = fsys.Open("../x")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestNewSafeFSValidatesRoot(t *testing.T) {
	_, err := NewSafeFS("")
	assert.Error(t, err)

	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	_, err = NewSafeFS(f)
	assert.Error(t, err)
}
