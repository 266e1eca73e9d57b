// Package document splits an annotated shader document into its sections.
//
// A document is an optional `#version` line, a prolog of global
// declarations, and a sequence of spans each introduced by a marker line:
//
//	#version 450
//	uniform float time; // shiba time
//	#pragma shiba common
//	...
//	#pragma shiba vertex 0
//	...
//	#pragma shiba fragment 0
//	...
//
// Markers are only recognized at the start of a line, so the same text
// appearing inside code is left alone. Once `#pragma shiba` has been
// recognized, an unknown or malformed directive is a parse error.
package document

import (
	"strings"

	"github.com/HugoDaniel/shiba/internal/diagnostic"
	"github.com/HugoDaniel/shiba/internal/lexer"
)

// MaxProgramIndex bounds indexed stage directives. Programs are stored
// densely, so an index pads the list up to itself.
const MaxProgramIndex = 1023

// Span is the code following one marker, up to the next marker or the end
// of the document.
type Span struct {
	Directive Directive
	Code      string
	Offset    int // Byte offset of Code in the source
}

// Contents is a parsed document.
type Contents struct {
	Source string

	Version    string
	HasVersion bool

	// Prolog is the text between the version line and the first marker.
	Prolog       string
	PrologOffset int

	Spans []Span
}

// Parse splits source into its version line, prolog and marker spans using
// the given grammar.
func Parse(source string, grammar Grammar) (Contents, error) {
	s := lexer.New(source)
	c := Contents{Source: source}

	if version, ok := parseVersion(s); ok {
		c.Version = version
		c.HasVersion = true
	}
	c.PrologOffset = s.Pos()

	inProlog := true
	var current Directive
	codeStart := s.Pos()
	flush := func(end int) {
		code := s.Slice(codeStart, end)
		if inProlog {
			c.Prolog = code
			return
		}
		c.Spans = append(c.Spans, Span{Directive: current, Code: code, Offset: codeStart})
	}

	for !s.EOF() {
		if s.AtLineStart() {
			markerStart := s.Pos()
			d, ok, err := parseMarker(s, grammar)
			if err != nil {
				return Contents{}, err
			}
			if ok {
				flush(markerStart)
				inProlog = false
				current = d
				codeStart = s.Pos()
				continue
			}
			s.Reset(markerStart)
		}
		s.NextLine()
	}
	flush(len(source))

	return c, nil
}

// parseVersion consumes a `#version <token>` line at the very start of the
// document.
func parseVersion(s *lexer.Scanner) (string, bool) {
	if s.Pos() != 0 || !s.Literal("#version") || !s.Spaces1() {
		s.Reset(0)
		return "", false
	}
	version := strings.TrimRight(s.RestOfLine(), " \t")
	if version == "" {
		s.Reset(0)
		return "", false
	}
	s.LineEnding()
	return version, true
}

// parseMarker recognizes `#pragma shiba <directive>` followed by a line
// ending or the end of input. It reports false without error when the line
// is not a shiba marker at all.
func parseMarker(s *lexer.Scanner, grammar Grammar) (Directive, bool, error) {
	if !s.Literal("#pragma") || !s.Spaces1() || !s.Keyword("shiba") {
		return Directive{}, false, nil
	}
	if !s.Spaces1() {
		if s.EOF() || atLineEnd(s) {
			return Directive{}, false, errorAt(s, "missing directive after #pragma shiba")
		}
		return Directive{}, false, nil
	}

	keywordStart := s.Pos()
	word, _ := s.Identifier()
	kind, ok := lookupDirective(word, grammar)
	if !ok {
		s.Reset(keywordStart)
		if word == "" {
			return Directive{}, false, errorAt(s, "missing directive after #pragma shiba")
		}
		return Directive{}, false, errorAt(s, "unknown directive %q", word)
	}

	d := Section(kind)
	if kind.IsStage() {
		if !s.Spaces1() {
			return Directive{}, false, errorAt(s, "expected program %s after %q", addressing(grammar), word)
		}
		if grammar == GrammarNamed {
			name, ok := s.Identifier()
			if !ok {
				return Directive{}, false, errorAt(s, "expected program name after %q", word)
			}
			d = NamedStage(kind, name)
		} else {
			indexStart := s.Pos()
			index, ok := s.Uint()
			if !ok {
				return Directive{}, false, errorAt(s, "expected program index after %q", word)
			}
			if index > MaxProgramIndex {
				s.Reset(indexStart)
				return Directive{}, false, errorAt(s, "program index %d exceeds %d", index, MaxProgramIndex)
			}
			d = Stage(kind, index)
		}
	}

	s.Spaces0()
	if !s.EOF() && !s.LineEnding() {
		at := s.Pos()
		rest := s.RestOfLine()
		s.Reset(at)
		return Directive{}, false, errorAt(s, "unexpected %q after directive", rest)
	}
	return d, true, nil
}

func addressing(g Grammar) string {
	if g == GrammarNamed {
		return "name"
	}
	return "index"
}

func atLineEnd(s *lexer.Scanner) bool {
	rest := s.Rest()
	return strings.HasPrefix(rest, "\n") || strings.HasPrefix(rest, "\r\n")
}

func errorAt(s *lexer.Scanner, format string, args ...any) error {
	return diagnostic.ParseErrorAt(s.Source(), s.Pos(), format, args...)
}
