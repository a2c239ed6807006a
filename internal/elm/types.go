package elm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind tells functions and types apart, both in exposing lists and in
// module bodies.
type Kind string

const (
	KindFunction Kind = "function"
	KindType     Kind = "type"
)

// Classify applies the leading-case rule: a name starting with a lowercase
// letter is a function, anything else is a type.
func Classify(name string) Kind {
	r, _ := utf8.DecodeRuneInString(name)
	if r != utf8.RuneError && unicode.IsLower(r) {
		return KindFunction
	}
	return KindType
}

// ExportSpec is the parsed "exposing (...)" clause: ExposeAll or ExposeList.
type ExportSpec interface {
	isExportSpec()
}

// ExposeAll is "exposing (..)".
type ExposeAll struct{}

// ExposeList is an explicit exposing list in header order. Names are not
// deduplicated.
type ExposeList struct {
	Items []ExportedName
}

func (ExposeAll) isExportSpec()  {}
func (ExposeList) isExportSpec() {}

// ExportedName is one exposing item: ExportedType or ExportedFunction.
type ExportedName interface {
	ExportedName() string
	isExportedName()
}

// ExportedType is an uppercase exposing item. Definition holds the inline
// parenthesized part, e.g. ".." for "Msg(..)".
type ExportedType struct {
	Name       string
	Definition *string
}

// ExportedFunction is a lowercase exposing item.
type ExportedFunction struct {
	Name      string
	Signature *string
}

func (t ExportedType) ExportedName() string     { return t.Name }
func (f ExportedFunction) ExportedName() string { return f.Name }
func (ExportedType) isExportedName()            {}
func (ExportedFunction) isExportedName()        {}

func newExportedName(name string, inline *string) ExportedName {
	if Classify(name) == KindFunction {
		return ExportedFunction{Name: name, Signature: inline}
	}
	return ExportedType{Name: name, Definition: inline}
}

// Declaration is one top-level body item: Comment, Function, TypeDecl or
// Ignore.
type Declaration interface {
	isDeclaration()
}

// Comment is a block "{- -}" or line "--" comment.
type Comment struct{}

// Function is a top-level type annotation. Signature holds the
// arrow-separated terms; the last one is the return type. A nil Signature
// means none was parsed.
type Function struct {
	Name      string
	Signature []string
}

// TypeDecl is a "type" or "type alias" declaration.
type TypeDecl struct {
	Name       string
	Definition string
}

// Ignore is one unclassified source unit. Parse never returns it.
type Ignore struct{}

func (Comment) isDeclaration()  {}
func (Function) isDeclaration() {}
func (TypeDecl) isDeclaration() {}
func (Ignore) isDeclaration()   {}

// Export is one resolved, exported symbol of a module.
type Export struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	Signature  []string `json:"signature,omitempty"`
	Definition string   `json:"definition,omitempty"`
}

// SignatureString is the normalized signature used as the index key.
func (e Export) SignatureString() string {
	return JoinSignature(e.Signature)
}

// ReturnType is the last signature term, or "" when there is no signature.
func (e Export) ReturnType() string {
	if len(e.Signature) == 0 {
		return ""
	}
	return e.Signature[len(e.Signature)-1]
}

// Exports is the resolved export list of one module, in body order.
type Exports []Export

// Functions returns the exported functions that carry a signature.
func (es Exports) Functions() []Export {
	out := make([]Export, 0, len(es))
	for _, e := range es {
		if e.Kind == KindFunction && e.Signature != nil {
			out = append(out, e)
		}
	}
	return out
}

// JoinSignature renders signature terms in their normalized form.
func JoinSignature(terms []string) string {
	return strings.Join(terms, " -> ")
}
