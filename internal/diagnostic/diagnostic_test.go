package diagnostic

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIndex(t *testing.T) {
	cases := []struct {
		source string
		offset int
		line   int
		col    int
	}{
		{"abc", 0, 0, 0},
		{"abc", 2, 0, 2},
		{"ab\ncd", 3, 1, 0},
		{"ab\ncd", 4, 1, 1},
		{"ab\r\ncd", 4, 1, 0},
		{"ab\rcd", 3, 1, 0},
		{"ab\n", 3, 0, 3},
		{"ab", 99, 0, 2},
		{"ab", -1, 0, 0},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q@%d", tc.source, tc.offset), func(t *testing.T) {
			line, col := NewLineIndex(tc.source).ByteOffsetToLineColumn(tc.offset)
			assert.Equal(t, tc.line, line)
			assert.Equal(t, tc.col, col)
		})
	}
}

func TestParseErrorAt(t *testing.T) {
	err := ParseErrorAt("#version 450\n#pragma shiba nope\n", 27, "unknown directive %q", "nope")
	assert.Equal(t, KindParse, err.Kind)
	assert.Equal(t, 2, err.Pos.Line)
	assert.Equal(t, 15, err.Pos.Column)
	assert.Equal(t, `parse error: 2:15: unknown directive "nope"`, err.Error())
}

func TestToolError(t *testing.T) {
	cause := errors.New("exit status 3")
	err := Tool("shader_minifier.exe", "failed to minify", cause)
	assert.Equal(t, "tool error: shader_minifier.exe: failed to minify: exit status 3", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("building shader: %w", Structural("no shader stage defined"))
	assert.True(t, Is(wrapped, KindStructural))
	assert.False(t, Is(wrapped, KindParse))
	assert.False(t, Is(os.ErrNotExist, KindStructural))

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "no shader stage defined", e.Message)
}

func TestConfiguration(t *testing.T) {
	err := Configuration("paths.shader-minifier")
	assert.True(t, Is(err, KindConfiguration))
	assert.Contains(t, err.Error(), "paths.shader-minifier")
}
