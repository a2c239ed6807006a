package elm

import "unicode"

func isSpaceOrNewline(r rune) bool {
	return unicode.IsSpace(r) || r == '\n'
}

func isIdentChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// isInlineDefChar accepts the content of an exposing item's parentheses,
// e.g. the ".." in "Msg(..)" or "Just, Nothing" in "Maybe(Just, Nothing)".
func isInlineDefChar(r rune) bool {
	return isIdentChar(r) || r == '.' || r == ',' || r == ' '
}

func isSeparator(r rune) bool {
	return isSpaceOrNewline(r) || r == ','
}

// isBlank reports whether r may start an indented continuation line.
func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
