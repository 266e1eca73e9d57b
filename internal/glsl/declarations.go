// Package glsl recognizes global variable declarations inside a block of
// GLSL code.
//
// Parsing is best-effort: anything that is not a recognizable declaration
// (functions, preprocessor lines, comments) is skipped one byte at a time.
// The only hard failures are malformed `// shiba` uniform annotations.
package glsl

import (
	"strings"

	"github.com/HugoDaniel/shiba/internal/diagnostic"
	"github.com/HugoDaniel/shiba/internal/lexer"
	"github.com/HugoDaniel/shiba/internal/shader"
)

// Statement keywords that look like a type followed by a name.
var notTypes = map[string]bool{
	"return": true,
	"else":   true,
	"case":   true,
}

type parser struct {
	s    *lexer.Scanner
	vars []shader.Variable
}

// ParseVariables returns the variables declared in code, in order.
//
// It recognizes `precision` statements (discarded), `const` declarations
// with initializers, plain declarations and `uniform` declarations with an
// optional trailing `// shiba` annotation comment. Every variable starts
// active and without a minified name.
func ParseVariables(code string) ([]shader.Variable, error) {
	p := &parser{s: lexer.New(code)}
	for !p.s.EOF() {
		start := p.s.Pos()
		if p.skipComment() {
			continue
		}
		if p.s.AtWordStart() {
			matched, err := p.declaration()
			if err != nil {
				return nil, err
			}
			if matched {
				continue
			}
		}
		p.s.Reset(start)
		p.s.Advance(1)
	}
	return p.vars, nil
}

// skipComment consumes a line or block comment.
func (p *parser) skipComment() bool {
	switch {
	case p.s.Literal("//"):
		p.s.RestOfLine()
		return true
	case p.s.Literal("/*"):
		for !p.s.EOF() && !p.s.Literal("*/") {
			p.s.Advance(1)
		}
		return true
	}
	return false
}

func (p *parser) declaration() (bool, error) {
	start := p.s.Pos()
	if p.precision() {
		return true, nil
	}

	p.s.Reset(start)
	if p.constants() {
		return true, nil
	}

	p.s.Reset(start)
	if p.regulars() {
		return true, nil
	}

	p.s.Reset(start)
	return p.uniforms()
}

// precision <qualifier> <type>;
func (p *parser) precision() bool {
	if !p.s.Keyword("precision") || !p.s.Spaces1() {
		return false
	}
	if _, ok := p.s.Identifier(); !ok || !p.s.Spaces1() {
		return false
	}
	if _, ok := p.s.Identifier(); !ok {
		return false
	}
	p.s.Spaces0()
	return p.s.Byte(';')
}

// const <type> <name>[<len>]? = <expr>, ...;
func (p *parser) constants() bool {
	if !p.s.Keyword("const") || !p.s.Spaces1() {
		return false
	}
	typeName, ok := p.s.Identifier()
	if !ok || !p.s.Spaces1() {
		return false
	}

	var vars []shader.Variable
	for {
		name, length, ok := p.declarator()
		if !ok {
			return false
		}
		p.s.Spaces0()
		if !p.s.Byte('=') {
			return false
		}
		value, ok := p.expression()
		if !ok {
			return false
		}
		vars = append(vars, shader.Variable{
			Kind:     shader.KindConst,
			Value:    value,
			Active:   true,
			Length:   length,
			Name:     name,
			TypeName: typeName,
		})
		if p.s.Byte(';') {
			break
		}
		if !p.s.Byte(',') {
			return false
		}
		p.s.Spaces0()
	}

	p.vars = append(p.vars, vars...)
	return true
}

// <type> <name>[<len>]?, ...;
func (p *parser) regulars() bool {
	typeName, ok := p.s.Identifier()
	if !ok || notTypes[typeName] || !p.s.Spaces1() {
		return false
	}
	vars, ok := p.declaratorList(shader.KindRegular, typeName)
	if !ok {
		return false
	}
	p.vars = append(p.vars, vars...)
	return true
}

// uniform <type> <name>[<len>]?, ...; // shiba <annotation>, ...
func (p *parser) uniforms() (bool, error) {
	if !p.s.Keyword("uniform") || !p.s.Spaces1() {
		return false, nil
	}
	typeName, ok := p.s.Identifier()
	if !ok || !p.s.Spaces1() {
		return false, nil
	}
	vars, ok := p.declaratorList(shader.KindUniform, typeName)
	if !ok {
		return false, nil
	}

	annotations, err := p.annotationComment()
	if err != nil {
		return false, err
	}
	for i := range vars {
		for _, a := range annotations {
			vars[i].Annotations = append(vars[i].Annotations, a.Clone())
		}
	}

	p.vars = append(p.vars, vars...)
	return true, nil
}

// declaratorList parses `<name>[<len>]?, ...;` including the semicolon.
func (p *parser) declaratorList(kind shader.VariableKind, typeName string) ([]shader.Variable, bool) {
	var vars []shader.Variable
	for {
		name, length, ok := p.declarator()
		if !ok {
			return nil, false
		}
		vars = append(vars, shader.Variable{
			Kind:     kind,
			Active:   true,
			Length:   length,
			Name:     name,
			TypeName: typeName,
		})
		p.s.Spaces0()
		if p.s.Byte(';') {
			return vars, true
		}
		if !p.s.Byte(',') {
			return nil, false
		}
		p.s.Spaces0()
	}
}

// declarator parses `<name>` or `<name>[<len>]`.
func (p *parser) declarator() (name string, length int, ok bool) {
	name, ok = p.s.Identifier()
	if !ok {
		return "", 0, false
	}
	afterName := p.s.Pos()
	p.s.Spaces0()
	if !p.s.Byte('[') {
		p.s.Reset(afterName)
		return name, 0, true
	}
	length, ok = p.s.Uint()
	if !ok || length == 0 || !p.s.Byte(']') {
		return "", 0, false
	}
	return name, length, true
}

// expression scans a constant initializer up to the next top-level comma or
// semicolon, which is left unconsumed.
func (p *parser) expression() (string, bool) {
	start := p.s.Pos()
	depth := 0
	for !p.s.EOF() {
		switch p.s.Peek() {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return "", false
			}
		case ',', ';':
			if depth == 0 {
				value := strings.TrimSpace(p.s.Slice(start, p.s.Pos()))
				return value, value != ""
			}
		}
		p.s.Advance(1)
	}
	return "", false
}

// annotationComment parses an optional `// shiba <annotations>` comment
// following a uniform declaration on the same line.
func (p *parser) annotationComment() ([]shader.UniformAnnotation, error) {
	start := p.s.Pos()
	p.s.Spaces0()
	if !p.s.Literal("//") {
		p.s.Reset(start)
		return nil, nil
	}
	p.s.Spaces0()
	if !p.s.Keyword("shiba") || !p.s.Spaces1() {
		p.s.Reset(start)
		return nil, nil
	}
	return parseAnnotationList(p.s)
}

func parseError(s *lexer.Scanner, format string, args ...any) error {
	return diagnostic.ParseErrorAt(s.Source(), s.Pos(), format, args...)
}
