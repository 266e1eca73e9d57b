// Package api provides the public API of the shader compiler.
//
// This package is intended for programmatic use. For CLI usage, see
// cmd/shiba.
package api

import (
	"errors"
	"fmt"

	"github.com/HugoDaniel/shiba/internal/analyzer"
	"github.com/HugoDaniel/shiba/internal/builder"
	"github.com/HugoDaniel/shiba/internal/diagnostic"
	"github.com/HugoDaniel/shiba/internal/document"
	"github.com/HugoDaniel/shiba/internal/minifier"
	"github.com/HugoDaniel/shiba/internal/provider"
	"github.com/HugoDaniel/shiba/internal/reflect"
	"github.com/HugoDaniel/shiba/internal/shader"
	"github.com/HugoDaniel/shiba/internal/standalone"
)

type (
	// Descriptor is the structured form of a shader document.
	Descriptor = shader.Descriptor

	// Pass is one program with self-contained stage sources.
	Pass = standalone.Pass

	// ReflectResult describes the uniform arrays of a descriptor.
	ReflectResult = reflect.ReflectResult
)

// CompileOptions controls compilation.
type CompileOptions struct {
	// Grammar is "index" (default) or "name".
	Grammar string

	// Template renders the source as a Go text/template with Development
	// and Target before parsing.
	Template    bool
	Development bool

	// Target is "executable" (default) or "library".
	Target string

	// MinifierPath enables the external minifier when set.
	MinifierPath string
	MinifierArgs []string
}

// Diagnostic is one compilation error.
type Diagnostic struct {
	// Kind is "parse error", "structural error", "tool error" or
	// "configuration error".
	Kind    string `json:"kind"`
	Message string `json:"message"`

	// Line and Column are 1-based; zero when the error has no position.
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// CompileResult contains the compilation output.
type CompileResult struct {
	// Descriptor is nil when Errors is non-empty.
	Descriptor *Descriptor `json:"descriptor,omitempty"`

	Errors []Diagnostic `json:"errors,omitempty"`

	// Inlined, Dead and Bucketed count what the semantic passes did.
	Inlined  int `json:"inlined"`
	Dead     int `json:"dead"`
	Bucketed int `json:"bucketed"`
}

// Compile compiles a shader document with default options: indexed
// programs, no template and no minifier.
func Compile(source string) CompileResult {
	return CompileWithOptions(source, CompileOptions{})
}

// CompileWithOptions compiles a shader document.
func CompileWithOptions(source string, opts CompileOptions) CompileResult {
	grammar := document.GrammarIndexed
	if opts.Grammar != "" {
		g, err := parseGrammar(opts.Grammar)
		if err != nil {
			return failed(err)
		}
		grammar = g
	}

	target := provider.TargetExecutable
	if opts.Target != "" {
		t, err := provider.ParseTarget(opts.Target)
		if err != nil {
			return failed(err)
		}
		target = t
	}

	if opts.Template {
		rendered, err := provider.Render("shader", source, provider.TemplateData{
			Development: opts.Development,
			Target:      target,
		})
		if err != nil {
			return failed(err)
		}
		source = rendered
	}

	d, stats, err := provider.Compile(source, grammar)
	if err != nil {
		return failed(err)
	}

	if opts.MinifierPath != "" {
		m, err := minifier.New(minifier.Options{Path: opts.MinifierPath, Args: opts.MinifierArgs})
		if err != nil {
			return failed(err)
		}
		if d, err = m.Minify(d); err != nil {
			return failed(err)
		}
	}

	return result(d, stats)
}

// Parse parses and builds a shader document without running the semantic
// passes. Grammar is "index" or "name".
func Parse(source string, grammar string) (*Descriptor, error) {
	g, err := parseGrammar(grammar)
	if err != nil {
		return nil, err
	}
	contents, err := document.Parse(source, g)
	if err != nil {
		return nil, err
	}
	return builder.Build(contents)
}

// Standalone returns the self-contained stage sources of every program of d.
func Standalone(d *Descriptor) []Pass {
	return standalone.Passes(d)
}

// Reflect describes the uniform arrays of d.
func Reflect(d *Descriptor) ReflectResult {
	return reflect.Uniforms(d)
}

func parseGrammar(name string) (document.Grammar, error) {
	g, err := document.ParseGrammar(name)
	if err == nil && g == document.GrammarMinifier {
		err = fmt.Errorf("grammar %q is reserved for minifier output", name)
	}
	return g, err
}

func result(d *shader.Descriptor, stats analyzer.Stats) CompileResult {
	return CompileResult{
		Descriptor: d,
		Inlined:    stats.Inlined,
		Dead:       stats.Dead,
		Bucketed:   stats.Bucketed,
	}
}

func failed(err error) CompileResult {
	return CompileResult{Errors: []Diagnostic{toDiagnostic(err)}}
}

func toDiagnostic(err error) Diagnostic {
	var e *diagnostic.Error
	if !errors.As(err, &e) {
		return Diagnostic{Kind: "error", Message: err.Error()}
	}
	d := Diagnostic{Kind: e.Kind.String(), Message: e.Message}
	if e.Tool != "" {
		d.Message = e.Tool + ": " + d.Message
	}
	if e.Err != nil {
		d.Message += ": " + e.Err.Error()
	}
	if e.Pos.IsValid() {
		d.Line = e.Pos.Line
		d.Column = e.Pos.Column
	}
	return d
}
