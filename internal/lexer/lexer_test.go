package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ----------------------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------------------

func expectIdentifier(t *testing.T, input string, expected string, rest string) {
	t.Helper()
	s := New(input)
	ident, ok := s.Identifier()
	assert.True(t, ok, "input %q: expected an identifier", input)
	assert.Equal(t, expected, ident, "input %q", input)
	assert.Equal(t, rest, s.Rest(), "input %q", input)
}

func expectNoIdentifier(t *testing.T, input string) {
	t.Helper()
	s := New(input)
	_, ok := s.Identifier()
	assert.False(t, ok, "input %q: expected no identifier", input)
	assert.Equal(t, 0, s.Pos(), "input %q: position must not move", input)
}

// ----------------------------------------------------------------------------
// Identifier Tests
// ----------------------------------------------------------------------------

func TestIdentifiers(t *testing.T) {
	cases := []struct {
		input string
		ident string
		rest  string
	}{
		{"uniformVar0", "uniformVar0", ""},
		{"_shiba_float_uniforms[0]", "_shiba_float_uniforms", "[0]"},
		{"vec3 color;", "vec3", " color;"},
		{"a1;", "a1", ";"},
		{"aé = 1", "a", "é = 1"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			expectIdentifier(t, tc.input, tc.ident, tc.rest)
		})
	}
}

func TestNotIdentifiers(t *testing.T) {
	for _, input := range []string{"", "1abc", " foo", "#pragma", "[4]", "éclat"} {
		expectNoIdentifier(t, input)
	}
}

// ----------------------------------------------------------------------------
// Recognizer Tests
// ----------------------------------------------------------------------------

func TestKeyword(t *testing.T) {
	s := New("constant")
	assert.False(t, s.Keyword("const"))
	assert.Equal(t, 0, s.Pos())

	s = New("const float")
	assert.True(t, s.Keyword("const"))
	assert.Equal(t, " float", s.Rest())

	s = New("const")
	assert.True(t, s.Keyword("const"))
	assert.True(t, s.EOF())
}

func TestUint(t *testing.T) {
	s := New("42]")
	value, ok := s.Uint()
	assert.True(t, ok)
	assert.Equal(t, 42, value)
	assert.Equal(t, "]", s.Rest())

	s = New("x")
	_, ok = s.Uint()
	assert.False(t, ok)

	s = New("99999999999999999999999999")
	_, ok = s.Uint()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Pos())
}

func TestSpaces(t *testing.T) {
	s := New(" \t x")
	assert.True(t, s.Spaces1())
	assert.Equal(t, "x", s.Rest())
	assert.False(t, s.Spaces1())

	s = New("\nx")
	s.Spaces0()
	assert.Equal(t, 0, s.Pos(), "newlines are not horizontal whitespace")
}

func TestLineEnding(t *testing.T) {
	s := New("\r\nx")
	assert.True(t, s.LineEnding())
	assert.Equal(t, "x", s.Rest())

	s = New("\rx")
	assert.False(t, s.LineEnding())
	assert.Equal(t, 0, s.Pos())
}

func TestRestOfLine(t *testing.T) {
	s := New("#version 450\r\nfloat x;")
	assert.True(t, s.Literal("#version"))
	s.Spaces1()
	assert.Equal(t, "450", s.RestOfLine())
	assert.True(t, s.LineEnding())
	assert.Equal(t, "float x;", s.Rest())
}

func TestLinePositions(t *testing.T) {
	s := New("ab\ncd")
	assert.True(t, s.AtLineStart())
	s.Advance(1)
	assert.False(t, s.AtLineStart())
	s.NextLine()
	assert.True(t, s.AtLineStart())
	assert.Equal(t, "cd", s.Rest())

	s.Advance(1)
	assert.False(t, s.AtWordStart())
	s.Reset(3)
	assert.True(t, s.AtWordStart())
}

func TestResetClamps(t *testing.T) {
	s := New("abc")
	s.Reset(-4)
	assert.Equal(t, 0, s.Pos())
	s.Advance(10)
	assert.True(t, s.EOF())
	assert.Equal(t, byte(0), s.Peek())
}
