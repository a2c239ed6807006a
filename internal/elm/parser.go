package elm

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	KwModule   = "module"
	KwExposing = "exposing"
	KwType     = "type"
	KwAlias    = "alias"

	SeqExposingAll       = ".."
	SeqParenthesisOpen   = "("
	SeqParenthesisClose  = ")"
	SeqColon             = ":"
	SeqArrow             = "->"
	SeqLineComment       = "--"
	SeqBlockCommentStart = "{-"
	SeqBlockCommentEnd   = "-}"
)

var (
	ErrNoModuleHeader    = errors.New("elm: no module header")
	ErrMalformedExposing = errors.New("elm: malformed exposing clause")
)

// ParseError reports a structural failure for one source unit. Offset is a
// byte offset into the parsed text.
type ParseError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", e.Err, e.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse extracts the exposing clause and the top-level declarations of one
// Elm module. Comments are kept in the declaration list, unclassified units
// are dropped. It fails only when no "module ... exposing (...)" header can
// be read; arbitrary input never panics.
//
// The header is located by the first occurrence of "module", so a "module"
// inside an earlier comment or string is taken for the header.
func Parse(text string) (ExportSpec, []Declaration, error) {
	src := &source{text: text}
	spec, err := parseHeader(src)
	if err != nil {
		return nil, nil, err
	}
	return spec, parseBody(src), nil
}

// - skip*() consumes something if it can and reports whether it did; never fails.
// - read*() returns what was consumed, "" if nothing matched.
// - parse*() either succeeds, or restores the cursor and returns false / an error.

type source struct {
	text   string
	cursor int
}

func (s *source) eof() bool { return s.cursor >= len(s.text) }

func (s *source) rest() string { return s.text[s.cursor:] }

func (s *source) errorf(kind error, format string, args ...any) error {
	return &ParseError{Offset: s.cursor, Msg: fmt.Sprintf(format, args...), Err: kind}
}

func (s *source) peek() rune {
	if s.eof() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s.rest())
	return r
}

func (s *source) skipRune() {
	if s.eof() {
		return
	}
	_, w := utf8.DecodeRuneInString(s.rest())
	s.cursor += w
}

func (s *source) skipSeq(seq string) bool {
	if strings.HasPrefix(s.rest(), seq) {
		s.cursor += len(seq)
		return true
	}
	return false
}

func (s *source) readWhile(pred func(rune) bool) string {
	start := s.cursor
	for !s.eof() {
		r, w := utf8.DecodeRuneInString(s.rest())
		if r == utf8.RuneError && w <= 1 {
			break
		}
		if !pred(r) {
			break
		}
		s.cursor += w
	}
	return s.text[start:s.cursor]
}

// skipPast moves the cursor right after the next occurrence of seq.
func (s *source) skipPast(seq string) bool {
	i := strings.Index(s.rest(), seq)
	if i < 0 {
		return false
	}
	s.cursor += i + len(seq)
	return true
}

func (s *source) atLineStart() bool {
	return s.cursor > 0 && s.text[s.cursor-1] == '\n'
}

// skipComment consumes one block or line comment. An unterminated block
// comment is not a comment; a line comment may end at EOF.
func (s *source) skipComment() bool {
	rest := s.rest()
	switch {
	case strings.HasPrefix(rest, SeqBlockCommentStart):
		end := strings.Index(rest[len(SeqBlockCommentStart):], SeqBlockCommentEnd)
		if end < 0 {
			return false
		}
		s.cursor += len(SeqBlockCommentStart) + end + len(SeqBlockCommentEnd)
		return true
	case strings.HasPrefix(rest, SeqLineComment):
		if !s.skipPast("\n") {
			s.cursor = len(s.text)
		}
		return true
	}
	return false
}

// skipGap consumes any run of whitespace and comments.
func (s *source) skipGap() {
	for {
		s.readWhile(isSpaceOrNewline)
		if !s.skipComment() {
			return
		}
	}
}

func parseHeader(src *source) (ExportSpec, error) {
	if !src.skipPast(KwModule) {
		return nil, src.errorf(ErrNoModuleHeader, "expected %q", KwModule)
	}
	if !src.skipPast(KwExposing) {
		return nil, src.errorf(ErrMalformedExposing, "expected %q", KwExposing)
	}
	src.readWhile(isSeparator)
	if !src.skipSeq(SeqParenthesisOpen) {
		return nil, src.errorf(ErrMalformedExposing, "expected %q after %q", SeqParenthesisOpen, KwExposing)
	}

	var spec ExportSpec
	src.skipGap()
	if src.skipSeq(SeqExposingAll) {
		src.skipGap()
		spec = ExposeAll{}
	} else {
		items, err := parseExposedItems(src)
		if err != nil {
			return nil, err
		}
		spec = ExposeList{Items: items}
	}

	if !src.skipSeq(SeqParenthesisClose) {
		return nil, src.errorf(ErrMalformedExposing, "expected %q", SeqParenthesisClose)
	}
	return spec, nil
}

func parseExposedItems(src *source) ([]ExportedName, error) {
	var items []ExportedName
	for {
		item, err := parseExposedItem(src)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, item)
		}
		if !src.skipSeq(",") {
			return items, nil
		}
	}
}

// parseExposedItem returns a nil item for an operator such as "(|>)"; those
// are skipped rather than failing the module.
func parseExposedItem(src *source) (ExportedName, error) {
	src.skipGap()
	if src.skipSeq(SeqParenthesisOpen) {
		op := src.readWhile(func(r rune) bool { return r != ')' && r != ',' && !isSpaceOrNewline(r) })
		if op == "" || !src.skipSeq(SeqParenthesisClose) {
			return nil, src.errorf(ErrMalformedExposing, "malformed operator export")
		}
		src.skipGap()
		return nil, nil
	}
	name := src.readWhile(isIdentChar)
	if name == "" {
		return nil, src.errorf(ErrMalformedExposing, "expected exposed name")
	}
	var inline *string
	if src.skipSeq(SeqParenthesisOpen) {
		def := strings.TrimSpace(src.readWhile(isInlineDefChar))
		if !src.skipSeq(SeqParenthesisClose) {
			return nil, src.errorf(ErrMalformedExposing, "unterminated constructor list for %q", name)
		}
		inline = &def
	}
	src.skipGap()
	return newExportedName(name, inline), nil
}

func parseBody(src *source) []Declaration {
	var decls []Declaration
	for !src.eof() {
		if src.skipComment() {
			decls = append(decls, Comment{})
			continue
		}
		if src.atLineStart() {
			if decl, ok := parseTypeDecl(src); ok {
				decls = append(decls, decl)
				continue
			}
			if decl, ok := parseFunction(src); ok {
				decls = append(decls, decl)
				continue
			}
		}
		src.skipRune()
	}
	return decls
}

// parseFunction reads "name : <signature> name". The signature ends at the
// next standalone occurrence of the name, so a signature mentioning its own
// function name is cut short there.
func parseFunction(src *source) (Function, bool) {
	start := src.cursor
	name := src.readWhile(isIdentChar)
	if name == "" || Classify(name) != KindFunction {
		src.cursor = start
		return Function{}, false
	}
	src.readWhile(isSeparator)
	if !src.skipSeq(SeqColon) || strings.HasPrefix(src.rest(), SeqColon) {
		src.cursor = start
		return Function{}, false
	}
	src.readWhile(isSeparator)

	end := indexToken(src.text, name, src.cursor)
	if end < 0 {
		src.cursor = start
		return Function{}, false
	}
	sig := src.text[src.cursor:end]
	src.cursor = end + len(name)
	return Function{Name: name, Signature: SplitSignature(sig)}, true
}

// parseTypeDecl reads "type [alias] Name ..." up to the next line that starts
// in column 0.
func parseTypeDecl(src *source) (TypeDecl, bool) {
	start := src.cursor
	if !src.skipSeq(KwType) || !isSpaceOrNewline(src.peek()) {
		src.cursor = start
		return TypeDecl{}, false
	}
	src.readWhile(isSpaceOrNewline)
	aliasAt := src.cursor
	if !src.skipSeq(KwAlias) || !isSpaceOrNewline(src.peek()) {
		src.cursor = aliasAt
	}
	src.readWhile(isSpaceOrNewline)

	defStart := src.cursor
	name := src.readWhile(isIdentChar)
	if name == "" || Classify(name) != KindType {
		src.cursor = start
		return TypeDecl{}, false
	}
	end := endOfTopLevel(src.text, src.cursor)
	def := strings.Join(strings.Fields(src.text[defStart:end]), " ")
	src.cursor = end
	return TypeDecl{Name: name, Definition: def}, true
}

// endOfTopLevel returns the offset of the first newline at or after from that
// is followed by a non-blank character, or len(text).
func endOfTopLevel(text string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] != '\n' || i+1 >= len(text) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[i+1:])
		if !isBlank(next) {
			return i
		}
	}
	return len(text)
}

// indexToken finds tok at or after from, delimited on both sides by
// non-identifier characters.
func indexToken(text, tok string, from int) int {
	for from <= len(text) {
		i := strings.Index(text[from:], tok)
		if i < 0 {
			return -1
		}
		at := from + i
		before, _ := utf8.DecodeLastRuneInString(text[:at])
		after, _ := utf8.DecodeRuneInString(text[at+len(tok):])
		if (at == 0 || !isIdentChar(before)) && (at+len(tok) == len(text) || !isIdentChar(after)) {
			return at
		}
		from = at + len(tok)
	}
	return -1
}

// SplitSignature splits a type annotation on every "->", including arrows
// inside parentheses, so "(a -> b) -> c" yields "(a", "b)" and "c".
// Newlines and tabs are stripped and each term is trimmed.
func SplitSignature(sig string) []string {
	parts := strings.Split(sig, SeqArrow)
	terms := make([]string, len(parts))
	for i, part := range parts {
		terms[i] = cleanTerm(part)
	}
	return terms
}

var termCleaner = strings.NewReplacer("\r", "", "\n", "", "\t", "")

func cleanTerm(term string) string {
	return strings.TrimSpace(termCleaner.Replace(term))
}
