// Package lexer provides the scanning primitives shared by the declaration
// parser and the document parser.
//
// A Scanner walks a source string by byte offset and exposes small
// recognizers that either consume their match and report success, or leave
// the position untouched. Callers build backtracking parsers on top of them
// with Pos and Reset:
// - Identifiers (letters, digits and underscores, not starting with a digit)
// - Unsigned integers (array lengths, program indices)
// - Horizontal whitespace and line endings
// - Literal keywords and punctuation
package lexer

import (
	"strconv"
	"unicode/utf8"
)

// ----------------------------------------------------------------------------
// Character Classes
// ----------------------------------------------------------------------------

// IsIdentStart reports whether r may start an identifier. GLSL identifiers
// are ASCII only, which keeps them in step with regexp's `\b`.
func IsIdentStart(r rune) bool {
	return r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

// IsIdentPart reports whether r may continue an identifier.
func IsIdentPart(r rune) bool {
	return IsIdentStart(r) || '0' <= r && r <= '9'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// ----------------------------------------------------------------------------
// Scanner
// ----------------------------------------------------------------------------

// Scanner is a cursor over a source string.
type Scanner struct {
	source string
	pos    int
}

// New creates a scanner positioned at the start of source.
func New(source string) *Scanner {
	return &Scanner{source: source}
}

// Source returns the full scanned text.
func (s *Scanner) Source() string {
	return s.source
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int {
	return s.pos
}

// Reset moves the scanner back (or forward) to a previously saved offset.
func (s *Scanner) Reset(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.source) {
		pos = len(s.source)
	}
	s.pos = pos
}

// EOF reports whether the whole input has been consumed.
func (s *Scanner) EOF() bool {
	return s.pos >= len(s.source)
}

// Peek returns the current byte, or 0 at end of input.
func (s *Scanner) Peek() byte {
	if s.pos >= len(s.source) {
		return 0
	}
	return s.source[s.pos]
}

// Advance skips n bytes, clamped to the end of input.
func (s *Scanner) Advance(n int) {
	s.Reset(s.pos + n)
}

// Rest returns the unconsumed input.
func (s *Scanner) Rest() string {
	return s.source[s.pos:]
}

// Slice returns source[from:to].
func (s *Scanner) Slice(from, to int) string {
	return s.source[from:to]
}

// ----------------------------------------------------------------------------
// Recognizers
// ----------------------------------------------------------------------------

// Spaces0 consumes any run of spaces and tabs.
func (s *Scanner) Spaces0() {
	for s.pos < len(s.source) && isSpace(s.source[s.pos]) {
		s.pos++
	}
}

// Spaces1 consumes a non-empty run of spaces and tabs.
func (s *Scanner) Spaces1() bool {
	start := s.pos
	s.Spaces0()
	return s.pos > start
}

// Byte consumes c if it is the current byte.
func (s *Scanner) Byte(c byte) bool {
	if s.pos < len(s.source) && s.source[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

// Literal consumes lit if the input continues with it.
func (s *Scanner) Literal(lit string) bool {
	if len(s.source)-s.pos >= len(lit) && s.source[s.pos:s.pos+len(lit)] == lit {
		s.pos += len(lit)
		return true
	}
	return false
}

// Keyword consumes word only when it is not immediately followed by an
// identifier character, so "const" does not match the start of "constant".
func (s *Scanner) Keyword(word string) bool {
	start := s.pos
	if !s.Literal(word) {
		return false
	}
	if r, _ := utf8.DecodeRuneInString(s.Rest()); !s.EOF() && IsIdentPart(r) {
		s.pos = start
		return false
	}
	return true
}

// Identifier consumes an identifier.
func (s *Scanner) Identifier() (string, bool) {
	start := s.pos
	r, size := utf8.DecodeRuneInString(s.Rest())
	if s.EOF() || !IsIdentStart(r) {
		return "", false
	}
	s.pos += size
	for s.pos < len(s.source) {
		r, size = utf8.DecodeRuneInString(s.Rest())
		if !IsIdentPart(r) {
			break
		}
		s.pos += size
	}
	return s.source[start:s.pos], true
}

// Digits consumes a non-empty run of decimal digits.
func (s *Scanner) Digits() (string, bool) {
	start := s.pos
	for s.pos < len(s.source) && isDigit(s.source[s.pos]) {
		s.pos++
	}
	return s.source[start:s.pos], s.pos > start
}

// Uint consumes a decimal unsigned integer. Values that overflow int are
// rejected and the position is left untouched.
func (s *Scanner) Uint() (int, bool) {
	start := s.pos
	digits, ok := s.Digits()
	if !ok {
		return 0, false
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		s.pos = start
		return 0, false
	}
	return value, true
}

// LineEnding consumes "\n" or "\r\n".
func (s *Scanner) LineEnding() bool {
	if s.Byte('\n') {
		return true
	}
	start := s.pos
	if s.Byte('\r') && s.Byte('\n') {
		return true
	}
	s.pos = start
	return false
}

// RestOfLine consumes everything up to, but excluding, the next line ending.
func (s *Scanner) RestOfLine() string {
	start := s.pos
	for s.pos < len(s.source) {
		c := s.source[s.pos]
		if c == '\n' || (c == '\r' && s.pos+1 < len(s.source) && s.source[s.pos+1] == '\n') {
			break
		}
		s.pos++
	}
	return s.source[start:s.pos]
}

// AtLineStart reports whether the scanner sits at offset 0 or right after a
// newline.
func (s *Scanner) AtLineStart() bool {
	return s.pos == 0 || (s.pos <= len(s.source) && s.source[s.pos-1] == '\n')
}

// AtWordStart reports whether the previous character cannot continue an
// identifier, so a token starting here is not the tail of a longer word.
func (s *Scanner) AtWordStart() bool {
	if s.pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s.source[:s.pos])
	return !IsIdentPart(r)
}

// NextLine moves past the next newline, or to the end of input.
func (s *Scanner) NextLine() {
	for s.pos < len(s.source) {
		c := s.source[s.pos]
		s.pos++
		if c == '\n' {
			return
		}
	}
}
