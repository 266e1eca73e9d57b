// Package builder folds the spans of a parsed document into a shader
// descriptor.
package builder

import (
	"errors"
	"regexp"
	"strings"

	"github.com/HugoDaniel/shiba/internal/diagnostic"
	"github.com/HugoDaniel/shiba/internal/document"
	"github.com/HugoDaniel/shiba/internal/glsl"
	"github.com/HugoDaniel/shiba/internal/shader"
)

// BuildOnly is the macro that selects the branch of a conditional block
// meant for built shaders.
const BuildOnly = "BUILD_ONLY"

var (
	// `#ifdef BUILD_ONLY A #else B #endif` keeps A.
	ifdefRE = regexp.MustCompile(`(?s)#ifdef\s+` + BuildOnly + `\b(.*?)(?:#else.*?)?#endif`)
	// `#ifndef BUILD_ONLY A #else B #endif` keeps B, or nothing.
	ifndefRE = regexp.MustCompile(`(?s)#ifndef\s+` + BuildOnly + `\b.*?(?:#else(.*?))?#endif`)

	// Entry points are renamed so that every stage can be written with a
	// distinct function name, e.g. `void mainImage()`.
	mainRE = regexp.MustCompile(`void\s+main\w*\s*\(\s*\)`)
)

// Normalize resolves BUILD_ONLY conditional blocks, rewrites
// `void main<suffix>()` to `void main()` and trims the code.
func Normalize(code string) string {
	code = ifdefRE.ReplaceAllString(code, "${1}")
	code = ifndefRE.ReplaceAllString(code, "${1}")
	return strings.TrimSpace(mainRE.ReplaceAllLiteralString(code, "void main()"))
}

// Apply appends code to the descriptor field selected by directive. Code is
// normalized first and empty code is ignored, so a field never holds an
// empty string. Appended code starts on a new line, so a block ending in a
// preprocessor line or a line comment cannot swallow the next one. Stage directives address programs by index or by name.
func Apply(d *shader.Descriptor, directive document.Directive, code string) error {
	code = Normalize(code)
	if code == "" {
		return nil
	}

	var field *string
	switch directive.Kind {
	case document.Attributes:
		field = &d.Sections.Attributes
	case document.Common:
		field = &d.Sections.Common
	case document.Outputs:
		field = &d.Sections.Outputs
	case document.Varyings:
		field = &d.Sections.Varyings
	case document.Vertex, document.Fragment:
		p := program(d, directive)
		if directive.Kind == document.Vertex {
			field = &p.Vertex
		} else {
			field = &p.Fragment
		}
	default:
		return diagnostic.Structural("directive %q has no place in a shader descriptor", directive.String())
	}

	if *field != "" {
		*field += "\n"
	}
	*field += code
	return nil
}

func program(d *shader.Descriptor, directive document.Directive) *shader.Program {
	if directive.Name != "" {
		return d.Programs.Named(directive.Name)
	}
	return d.Programs.At(directive.Index)
}

// Build creates a descriptor from parsed document contents. The prolog is
// parsed for global declarations and never kept as code.
func Build(contents document.Contents) (*shader.Descriptor, error) {
	d := &shader.Descriptor{GLSLVersion: contents.Version}

	for _, span := range contents.Spans {
		if err := apply(d, span); err != nil {
			return nil, err
		}
	}

	vars, err := glsl.ParseVariables(contents.Prolog)
	if err != nil {
		return nil, rebase(err, contents)
	}
	d.Variables = vars

	if len(d.Programs) == 0 {
		return nil, diagnostic.Structural("no shader stage defined")
	}
	return d, nil
}

func apply(d *shader.Descriptor, span document.Span) error {
	if span.Directive.Kind.MinifierOnly() {
		return diagnostic.Structural("directive %q is only valid in minifier output", span.Directive.String())
	}
	return Apply(d, span.Directive, span.Code)
}

// rebase moves a prolog parse error position onto the whole document.
func rebase(err error, contents document.Contents) error {
	var e *diagnostic.Error
	if !errors.As(err, &e) || !e.Pos.IsValid() {
		return err
	}
	offset := contents.PrologOffset + e.Pos.Offset
	return diagnostic.ParseErrorAt(contents.Source, offset, "%s", e.Message)
}
