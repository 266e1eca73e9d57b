// Package diagnostic provides the error taxonomy of the shader pipeline.
//
// Every failure is fatal to the build that produced it; nothing is retried.
// Errors carry a Kind so that callers can tell a malformed document apart
// from a misbehaving external tool or a missing configuration key, and parse
// errors carry the source position they were detected at.
package diagnostic

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline error.
type Kind uint8

const (
	// KindParse is a malformed directive, declaration or annotation.
	KindParse Kind = iota
	// KindStructural is a well-formed document that cannot produce a valid
	// descriptor, or a minifier output that does not line up with its input.
	KindStructural
	// KindTool is an external tool that failed to start or exited non-zero.
	KindTool
	// KindConfiguration is a required setting that is missing.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindStructural:
		return "structural error"
	case KindTool:
		return "tool error"
	case KindConfiguration:
		return "configuration error"
	default:
		return "unknown error"
	}
}

// Position represents a position in source code.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// IsValid reports whether the position was resolved against a source.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Error is a classified pipeline error.
type Error struct {
	Kind    Kind
	Message string
	Pos     Position // Set for parse errors
	Tool    string   // Set for tool errors
	Err     error    // Underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Pos.IsValid() {
		msg = fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
	}
	if e.Tool != "" {
		msg = fmt.Sprintf("%s: %s", e.Tool, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ParseErrorAt creates a parse error located at a byte offset of source.
func ParseErrorAt(source string, offset int, format string, args ...any) *Error {
	line, col := NewLineIndex(source).ByteOffsetToLineColumn(offset)
	return &Error{
		Kind:    KindParse,
		Message: fmt.Sprintf(format, args...),
		Pos: Position{
			Offset: offset,
			Line:   line + 1, // Convert to 1-based
			Column: col + 1,  // Convert to 1-based
		},
	}
}

// Structural creates a structural error.
func Structural(format string, args ...any) *Error {
	return &Error{
		Kind:    KindStructural,
		Message: fmt.Sprintf(format, args...),
	}
}

// Tool creates a tool error for the named external tool.
func Tool(tool string, message string, err error) *Error {
	return &Error{
		Kind:    KindTool,
		Message: message,
		Tool:    tool,
		Err:     err,
	}
}

// Configuration creates a configuration error for a missing key.
func Configuration(key string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf("please set configuration key %s", key),
	}
}

// Is reports whether err, or any error it wraps, is a pipeline error of the
// given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
