package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"

	"fnsearch/internal/artifact"
	"fnsearch/internal/elm"
	"fnsearch/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listExtra = `module List.Extra exposing (last, unique, Zipper)

{-| Convenience functions for lists. -}

import Set


{-| Last element of a list. -}
last : List a -> Maybe a
last items =
    List.head (List.reverse items)


unique : List comparable -> List comparable
unique list =
    list


helper : Int
helper =
    0


type Zipper a
    = Zipper (List a) a (List a)
`

func checkout() fstest.MapFS {
	return fstest.MapFS{
		"elm.json":                 {Data: []byte(`{"type":"package"}`)},
		"src/List/Extra.elm":       {Data: []byte(listExtra)},
		"src/Broken.elm":           {Data: []byte("-- no header here\nfoo : Int\n")},
		"src/Binary.elm":           {Data: []byte{0xff, 0xfe, 0x00}},
		"tests/List/ExtraTest.elm": {Data: []byte("module List.ExtraTest exposing (..)\nsuite : Test\nsuite\n")},
	}
}

func TestIndexRepo(t *testing.T) {
	ctx := context.Background()
	st := store.New("")
	arts := artifact.NewMemoryStore()
	ix := &Indexer{Store: st, Artifacts: arts}

	rep, err := ix.IndexRepo(ctx, Target{
		Name:    "elm-community/list-extra",
		URL:     "https://github.com/elm-community/list-extra",
		Version: "8.7.0",
		FS:      checkout(),
	})
	require.NoError(t, err)
	assert.Equal(t, Report{Files: 3, Failed: 2, Exports: 3, Functions: 2}, rep)

	pairs, err := st.AllSignatures(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "List a -> Maybe a", pairs[0].Signature)
	assert.Equal(t, "List comparable -> List comparable", pairs[1].Signature)

	fns, err := st.GetFunctions(ctx, []int64{pairs[0].ID})
	require.NoError(t, err)
	require.Len(t, fns, 1)
	assert.Equal(t, "last", fns[0].FuncName)
	assert.Equal(t, "elm-community/list-extra", fns[0].RepoName)

	paths, err := arts.List(ctx, "elm-community/list-extra")
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/8.7.0/List/Extra.json"}, paths)

	raw, err := arts.Get(ctx, "elm-community/list-extra", paths[0])
	require.NoError(t, err)
	var archived elm.Exports
	require.NoError(t, json.Unmarshal(raw, &archived))
	require.Len(t, archived, 3)
	assert.Equal(t, "Zipper", archived[2].Name)
	assert.Equal(t, elm.KindType, archived[2].Kind)
}

func TestIndexRepo_ReindexReplaces(t *testing.T) {
	ctx := context.Background()
	st := store.New("")
	ix := &Indexer{Store: st}
	target := Target{Name: "a/b", URL: "https://github.com/a/b", Version: "1.0.0", FS: checkout()}

	_, err := ix.IndexRepo(ctx, target)
	require.NoError(t, err)
	_, err = ix.IndexRepo(ctx, target)
	require.NoError(t, err)

	pairs, err := st.AllSignatures(ctx)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}

type failingStore struct{ *store.Store }

func (failingStore) UpsertRepository(context.Context, store.Repository) (int32, error) {
	return 0, errors.New("connection refused")
}

func TestIndexRepo_StoreErrorIsReturned(t *testing.T) {
	ix := &Indexer{Store: failingStore{}}
	_, err := ix.IndexRepo(context.Background(), Target{Name: "a/b", FS: checkout()})
	assert.Error(t, err)
}

func TestParseFile_Errors(t *testing.T) {
	fsys := checkout()
	_, err := ParseFile(fsys, "src/Broken.elm")
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "src/Broken.elm", fe.Path)
	assert.ErrorIs(t, err, elm.ErrNoModuleHeader)

	_, err = ParseFile(fsys, "src/Binary.elm")
	assert.ErrorIs(t, err, errNotUTF8)

	_, err = ParseFile(fsys, "src/Missing.elm")
	assert.Error(t, err)
}
