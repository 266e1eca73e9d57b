package glsl

import (
	"strings"

	"github.com/HugoDaniel/shiba/internal/lexer"
	"github.com/HugoDaniel/shiba/internal/shader"
)

// ParseAnnotations parses a comma separated annotation list such as
// `control(min=0, max=1), time`, the text that follows `// shiba` on a
// uniform declaration line.
func ParseAnnotations(text string) ([]shader.UniformAnnotation, error) {
	s := lexer.New(text)
	s.Spaces0()
	annotations, err := parseAnnotationList(s)
	if err != nil {
		return nil, err
	}
	s.Spaces0()
	if !s.EOF() {
		return nil, parseError(s, "unexpected %q after annotations", s.Rest())
	}
	return annotations, nil
}

func parseAnnotationList(s *lexer.Scanner) ([]shader.UniformAnnotation, error) {
	var annotations []shader.UniformAnnotation
	for {
		a, err := parseAnnotation(s)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)

		next := s.Pos()
		s.Spaces0()
		if !s.Byte(',') {
			s.Reset(next)
			return annotations, nil
		}
		s.Spaces0()
	}
}

func parseAnnotation(s *lexer.Scanner) (shader.UniformAnnotation, error) {
	start := s.Pos()
	for !s.EOF() && (s.Peek() == '-' || lexer.IsIdentPart(rune(s.Peek()))) {
		s.Advance(1)
	}
	word := s.Slice(start, s.Pos())
	kind, ok := shader.LookupAnnotationKind(word)
	if !ok {
		s.Reset(start)
		if word == "" {
			return shader.UniformAnnotation{}, parseError(s, "expected uniform annotation")
		}
		return shader.UniformAnnotation{}, parseError(s, "unknown uniform annotation %q", word)
	}

	a := shader.UniformAnnotation{Kind: kind}
	if kind != shader.AnnotationControl {
		return a, nil
	}

	a.Parameters = map[string]string{}
	afterKeyword := s.Pos()
	s.Spaces0()
	if !s.Byte('(') {
		s.Reset(afterKeyword)
		return a, nil
	}
	if err := parseControlParameters(s, a.Parameters); err != nil {
		return shader.UniformAnnotation{}, err
	}
	return a, nil
}

// parseControlParameters parses `key=value, ...)` after the opening
// parenthesis. Values may be parenthesized tuples or quoted strings, whose
// commas do not separate parameters.
func parseControlParameters(s *lexer.Scanner, params map[string]string) error {
	s.Spaces0()
	if s.Byte(')') {
		return nil
	}
	for {
		s.Spaces0()
		key, ok := s.Identifier()
		if !ok {
			return parseError(s, "expected control parameter name")
		}
		s.Spaces0()
		if !s.Byte('=') {
			return parseError(s, "expected '=' after control parameter %q", key)
		}
		s.Spaces0()
		value, err := parseControlValue(s)
		if err != nil {
			return err
		}
		params[key] = value

		s.Spaces0()
		switch {
		case s.Byte(','):
		case s.Byte(')'):
			return nil
		default:
			return parseError(s, "unterminated control parameter list")
		}
	}
}

func parseControlValue(s *lexer.Scanner) (string, error) {
	start := s.Pos()
	switch s.Peek() {
	case '(':
		depth := 0
		for !s.EOF() && !endOfLine(s.Peek()) {
			c := s.Peek()
			s.Advance(1)
			if c == '(' {
				depth++
			} else if c == ')' {
				depth--
				if depth == 0 {
					return s.Slice(start, s.Pos()), nil
				}
			}
		}
		s.Reset(start)
		return "", parseError(s, "unterminated parenthesized value")

	case '"':
		s.Advance(1)
		for !s.EOF() && !endOfLine(s.Peek()) {
			if s.Byte('"') {
				return s.Slice(start+1, s.Pos()-1), nil
			}
			s.Advance(1)
		}
		s.Reset(start)
		return "", parseError(s, "unterminated string value")

	default:
		for !s.EOF() && !endOfLine(s.Peek()) && s.Peek() != ',' && s.Peek() != ')' {
			s.Advance(1)
		}
		return strings.TrimSpace(s.Slice(start, s.Pos())), nil
	}
}

func endOfLine(c byte) bool {
	return c == '\n' || c == '\r'
}
