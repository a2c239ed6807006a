package elm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func functions(decls []Declaration) []Function {
	var out []Function
	for _, d := range decls {
		if f, ok := d.(Function); ok {
			out = append(out, f)
		}
	}
	return out
}

func TestParseHeader_ExposeAll(t *testing.T) {
	spec, decls, err := Parse("module Main exposing (..)")
	require.NoError(t, err)
	assert.Equal(t, ExposeAll{}, spec)
	assert.Empty(t, decls)
}

func TestParseHeader_SingleFunction(t *testing.T) {
	spec, _, err := Parse("module Main exposing (test0)")
	require.NoError(t, err)
	assert.Equal(t, ExposeList{Items: []ExportedName{
		ExportedFunction{Name: "test0"},
	}}, spec)
}

func TestParseHeader_TypesAndFunctions(t *testing.T) {
	spec, _, err := Parse("module Main exposing (Test0, test1)")
	require.NoError(t, err)
	assert.Equal(t, ExposeList{Items: []ExportedName{
		ExportedType{Name: "Test0"},
		ExportedFunction{Name: "test1"},
	}}, spec)
}

func TestParseHeader_NewlineSeparated(t *testing.T) {
	spec, _, err := Parse("module Utils.Time\n   exposing\n  ( a\n , b\n , c\n , d\n   )")
	require.NoError(t, err)
	assert.Equal(t, ExposeList{Items: []ExportedName{
		ExportedFunction{Name: "a"},
		ExportedFunction{Name: "b"},
		ExportedFunction{Name: "c"},
		ExportedFunction{Name: "d"},
	}}, spec)
}

func TestParseHeader_InlineConstructors(t *testing.T) {
	spec, _, err := Parse("module Maybe exposing (Maybe(Just, Nothing), Msg(..), withDefault)")
	require.NoError(t, err)
	assert.Equal(t, ExposeList{Items: []ExportedName{
		ExportedType{Name: "Maybe", Definition: strPtr("Just, Nothing")},
		ExportedType{Name: "Msg", Definition: strPtr("..")},
		ExportedFunction{Name: "withDefault"},
	}}, spec)
}

func TestParseHeader_CommentsInsideList(t *testing.T) {
	src := `module Json exposing
    ( Value -- the raw type
    , {- decoding -} decode
    )
`
	spec, _, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, ExposeList{Items: []ExportedName{
		ExportedType{Name: "Value"},
		ExportedFunction{Name: "decode"},
	}}, spec)
}

func TestParseHeader_DuplicatesKept(t *testing.T) {
	spec, _, err := Parse("module M exposing (a, a)")
	require.NoError(t, err)
	list, ok := spec.(ExposeList)
	require.True(t, ok)
	assert.Len(t, list.Items, 2)
}

func TestParseHeader_LeadingCommentsSkipped(t *testing.T) {
	spec, _, err := Parse("-- a file\n\n{- license -}\nport module Ports exposing (..)\n")
	require.NoError(t, err)
	assert.Equal(t, ExposeAll{}, spec)
}

func TestParseHeader_ModuleInCommentIsMisdetected(t *testing.T) {
	// The first "module" wins, even inside a comment.
	_, _, err := Parse("-- this module is great\nmodule M exposing (a)\n")
	require.NoError(t, err)

	_, _, err = Parse("-- this module has no exposing\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedExposing)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]error{
		"":                                 ErrNoModuleHeader,
		"main = text \"hi\"":               ErrNoModuleHeader,
		"module Main":                      ErrMalformedExposing,
		"module Main exposing":             ErrMalformedExposing,
		"module Main exposing a":           ErrMalformedExposing,
		"module Main exposing (":           ErrMalformedExposing,
		"module Main exposing ()":          ErrMalformedExposing,
		"module Main exposing (a, )":       ErrMalformedExposing,
		"module Main exposing (a":          ErrMalformedExposing,
		"module Main exposing (..":         ErrMalformedExposing,
		"module Main exposing (Msg(..)":    ErrMalformedExposing,
		"module Main exposing (Msg(.., a)": ErrMalformedExposing,
	}
	for src, want := range cases {
		t.Run(src, func(t *testing.T) {
			_, _, err := Parse(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, want)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseHeader_OperatorExportsSkipped(t *testing.T) {
	spec, _, err := Parse("module Basics exposing ((|>), (<|), map, (::))")
	require.NoError(t, err)
	assert.Equal(t, ExposeList{Items: []ExportedName{
		ExportedFunction{Name: "map"},
	}}, spec)

	_, _, err = Parse("module Basics exposing ((|>, map)")
	assert.ErrorIs(t, err, ErrMalformedExposing)
}

func TestParse_GarbageNeverPanics(t *testing.T) {
	inputs := []string{
		"\x00\x01\x02\xff\xfe",
		"module\xff exposing (\xff)",
		"module M exposing (..)\n\xff\xfe : \xff\nfoo : \xff",
		"module M exposing (..)\n{- unterminated",
		"module M exposing (..)\nfoo :",
		"module M exposing (..)\nfoo : Int",
		"module M exposing (..)\ntype",
		"module M exposing (..)\ntype alias",
		strings.Repeat("module exposing (", 50),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { _, _, _ = Parse(in) }, "input %q", in)
	}
}

func TestParseBody_Comments(t *testing.T) {
	_, decls, err := Parse("module M exposing (..)\n{- \nhello world \n-}\n-- hello world\nhello")
	require.NoError(t, err)
	assert.Equal(t, []Declaration{Comment{}, Comment{}}, decls)
}

func TestParseBody_FunctionSignature(t *testing.T) {
	_, decls, err := Parse("module M exposing (..)\ntest : Int -> List Int -> \nInt\ntest")
	require.NoError(t, err)
	assert.Equal(t, []Declaration{
		Function{Name: "test", Signature: []string{"Int", "List Int", "Int"}},
	}, decls)
}

func TestParseBody_MultilineSignature(t *testing.T) {
	src := `module Main exposing (..)

update :
    Msg
    -> Model
    -> ( Model, Cmd Msg )
update msg model =
    ( model, Cmd.none )
`
	_, decls, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, []Function{
		{Name: "update", Signature: []string{"Msg", "Model", "( Model, Cmd Msg )"}},
	}, functions(decls))
}

func TestParseBody_SplitsEveryArrow(t *testing.T) {
	src := "module List exposing (map)\nmap : (a->b) -> List a -> List b\nmap f xs =\n    xs\n"
	spec, decls, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, []Function{
		{Name: "map", Signature: []string{"(a", "b)", "List a", "List b"}},
	}, functions(decls))

	exports := Resolve(spec, decls)
	require.Len(t, exports, 1)
	assert.Equal(t, "(a -> b) -> List a -> List b", exports[0].SignatureString())
}

func TestParseBody_DocCommentsAndImports(t *testing.T) {
	src := `module Main exposing (..)

import Html exposing (Html, text)
import Json.Decode as Decode


{-| The entry point.
-}
main : Program () Model Msg
main =
    Browser.sandbox { init = init, update = update, view = view }


-- VIEW


view : Model -> Html Msg
view model =
    text model.name


searchResultDecoder : Decode.Decoder (List SearchResult)
searchResultDecoder =
    Decode.list resDecoder
`
	_, decls, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, []Function{
		{Name: "main", Signature: []string{"Program () Model Msg"}},
		{Name: "view", Signature: []string{"Model", "Html Msg"}},
		{Name: "searchResultDecoder", Signature: []string{"Decode.Decoder (List SearchResult)"}},
	}, functions(decls))
}

func TestParseBody_TypeDeclarations(t *testing.T) {
	src := `module Model exposing (..)

type alias Model =
    { name : String
    , count : Int
    }


type Msg
    = Increment
    | Rename String


count : Model -> Int
count model =
    model.count
`
	_, decls, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, []Declaration{
		TypeDecl{Name: "Model", Definition: "Model = { name : String , count : Int }"},
		TypeDecl{Name: "Msg", Definition: "Msg = Increment | Rename String"},
		Function{Name: "count", Signature: []string{"Model", "Int"}},
	}, decls)
}

func TestParseBody_NameMustBeStandalone(t *testing.T) {
	// "firstItem" contains "first" but is not the same token.
	src := "module L exposing (..)\nfirst : List firstItem -> Maybe firstItem\nfirst xs =\n    List.head xs\n"
	_, decls, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, []Function{
		{Name: "first", Signature: []string{"List firstItem", "Maybe firstItem"}},
	}, functions(decls))
}

func TestParseBody_SelfReferenceTruncates(t *testing.T) {
	// The signature ends at the first standalone occurrence of the name.
	src := "module M exposing (..)\nmodel : model -> Int\nmodel m =\n    1\n"
	_, decls, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, []Function{{Name: "model", Signature: []string{""}}}, functions(decls))
}

func TestParseBody_UppercaseAnnotationIsNotAFunction(t *testing.T) {
	_, decls, err := Parse("module M exposing (..)\nFoo : Int\nFoo\n")
	require.NoError(t, err)
	assert.Empty(t, functions(decls))
}

func TestParseBody_DoubleColonIsNotAnnotation(t *testing.T) {
	_, decls, err := Parse("module M exposing (..)\nfoo :: Int\nfoo\n")
	require.NoError(t, err)
	assert.Empty(t, functions(decls))
}

func TestParseBody_InterleavedCommentsCountFunctions(t *testing.T) {
	var b strings.Builder
	b.WriteString("module Gen exposing (..)\n")
	const n = 25
	for i := 0; i < n; i++ {
		name := "fn" + strings.Repeat("x", i)
		b.WriteString("-- comment\n{-| doc -}\n")
		b.WriteString(name + " : Int -> String\n" + name + " i =\n    String.fromInt i\n\n")
	}
	spec, decls, err := Parse(b.String())
	require.NoError(t, err)
	assert.Len(t, Resolve(spec, decls), n)
}

func TestSplitSignature(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Int -> List Int -> Int", []string{"Int", "List Int", "Int"}},
		{"Int", []string{"Int"}},
		{"", []string{""}},
		{"\tMsg\n    -> Model\n", []string{"Msg", "Model"}},
		{"{ a : Int -> Int } -> Int", []string{"{ a : Int", "Int }", "Int"}},
		{"List (a -> b) -> [ c ]", []string{"List (a", "b)", "[ c ]"}},
		{"(a->b)->c", []string{"(a", "b)", "c"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SplitSignature(tc.in), tc.in)
	}
}

func TestSplitSignature_Idempotent(t *testing.T) {
	terms := SplitSignature("Int -> List Int -> Int")
	require.Equal(t, []string{"Int", "List Int", "Int"}, terms)
	assert.Equal(t, terms, SplitSignature(JoinSignature(terms)))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindFunction, Classify("fooBar"))
	assert.Equal(t, KindType, Classify("FooBar"))
	assert.Equal(t, KindType, Classify(""))
	assert.Equal(t, KindType, Classify("_x"))

	spec, decls, err := Parse("module M exposing (fooBar, FooBar)\nfooBar : Int\nfooBar =\n    1\n\ntype FooBar\n    = FooBar\n")
	require.NoError(t, err)
	list := spec.(ExposeList)
	assert.IsType(t, ExportedFunction{}, list.Items[0])
	assert.IsType(t, ExportedType{}, list.Items[1])
	require.Len(t, decls, 2)
	assert.IsType(t, Function{}, decls[0])
	assert.IsType(t, TypeDecl{}, decls[1])
}
