// Package minifier round-trips a shader descriptor through an external
// GLSL minifier.
//
// The descriptor is serialized into one document whose sections are
// delimited by `#pragma shiba` markers, including two extra sections that
// declare the global variables and the uniform arrays so the minifier renames
// them consistently. The minified document is split again on the markers and
// the renamed declarations are matched back to the original variables by
// position, which yields a descriptor of the same shape with shorter code and
// every minified name filled in.
package minifier

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/HugoDaniel/shiba/internal/builder"
	"github.com/HugoDaniel/shiba/internal/diagnostic"
	"github.com/HugoDaniel/shiba/internal/document"
	"github.com/HugoDaniel/shiba/internal/glsl"
	"github.com/HugoDaniel/shiba/internal/shader"
)

const (
	InputFilename  = "shader.glsl"
	OutputFilename = "shader.min.glsl"

	// ConfigurationKey names the setting that holds the minifier path.
	ConfigurationKey = "paths.shader-minifier"
)

// Options controls how the external minifier is invoked.
type Options struct {
	// Path is the minifier executable. Required.
	Path string

	// Args are extra arguments placed before the input file.
	Args []string

	// WorkDir is where per-call scratch directories are created. Empty
	// means the system temporary directory.
	WorkDir string

	// KeepWorkDir leaves the scratch directory in place for debugging.
	KeepWorkDir bool

	// Runner executes the minifier. Nil means ExecRunner with the process
	// standard output and error.
	Runner Runner
}

// Minifier performs the round trip. A Minifier must not be used
// concurrently; separate builds use separate Minifiers.
type Minifier struct {
	options Options
	ids     *glsl.Identifiers
}

// New creates a minifier. It fails with a configuration error when no
// executable path is set.
func New(options Options) (*Minifier, error) {
	if strings.TrimSpace(options.Path) == "" {
		return nil, diagnostic.Configuration(ConfigurationKey)
	}
	if options.Runner == nil {
		options.Runner = ExecRunner{}
	}
	return &Minifier{options: options, ids: glsl.NewIdentifiers()}, nil
}

// Tool returns the display name of the minifier executable.
func (m *Minifier) Tool() string {
	return filepath.Base(m.options.Path)
}

// Args returns the full argument list passed to the minifier.
func (m *Minifier) Args() []string {
	args := []string{"--field-names", "rgba", "--format", "none", "-o", OutputFilename, "-v"}
	args = append(args, m.options.Args...)
	return append(args, "--", InputFilename)
}

// Minify runs d through the external minifier and returns the minified
// descriptor. d is not modified.
func (m *Minifier) Minify(d *shader.Descriptor) (*shader.Descriptor, error) {
	dir, err := os.MkdirTemp(m.options.WorkDir, "shader-minifier-")
	if err != nil {
		return nil, fmt.Errorf("creating minifier work directory: %w", err)
	}
	if m.options.KeepWorkDir {
		slog.Info("keeping minifier work directory", "dir", dir)
	} else {
		defer os.RemoveAll(dir)
	}

	if err := os.WriteFile(filepath.Join(dir, InputFilename), []byte(Serialize(d)), 0o644); err != nil {
		return nil, fmt.Errorf("writing minifier input: %w", err)
	}

	args := m.Args()
	slog.Debug("running shader minifier", "tool", m.options.Path, "args", args, "dir", dir)
	if err := m.options.Runner.Run(dir, m.options.Path, args...); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, diagnostic.Tool(m.Tool(), "failed to minify", err)
		}
		return nil, diagnostic.Tool(m.Tool(), "failed to start", err)
	}

	output, err := os.ReadFile(filepath.Join(dir, OutputFilename))
	if err != nil {
		return nil, diagnostic.Tool(m.Tool(), "failed to read minified shader", err)
	}

	return m.Reconcile(d, strings.ReplaceAll(string(output), "\r", ""))
}

// Reconcile rebuilds a descriptor from the minifier output for original.
func (m *Minifier) Reconcile(original *shader.Descriptor, minified string) (*shader.Descriptor, error) {
	contents, err := document.Parse(minified, document.GrammarMinifier)
	if err != nil {
		return nil, fmt.Errorf("parsing minifier output: %w", err)
	}

	result := original.Clone()
	result.Sections = shader.Sections{}
	for i := range result.Programs {
		result.Programs[i].Vertex = ""
		result.Programs[i].Fragment = ""
	}

	var variablesCode, arraysCode string
	var spans []document.Span
	for _, span := range contents.Spans {
		switch span.Directive.Kind {
		case document.Variables:
			variablesCode += span.Code
		case document.UniformArrays:
			arraysCode += span.Code
		default:
			spans = append(spans, span)
		}
	}

	if err := m.assignArrayNames(result, arraysCode); err != nil {
		return nil, err
	}
	if err := m.assignVariableNames(result, variablesCode); err != nil {
		return nil, err
	}

	for _, span := range spans {
		if span.Directive.Kind.IsStage() && span.Directive.Index >= len(result.Programs) {
			return nil, diagnostic.Structural("minifier output refers to program %d, expected %d programs",
				span.Directive.Index, len(result.Programs))
		}
		if err := builder.Apply(result, span.Directive, m.repairArrayNames(result, span.Code)); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (m *Minifier) assignArrayNames(d *shader.Descriptor, code string) error {
	declared, err := glsl.ParseVariables(code)
	if err != nil {
		return fmt.Errorf("parsing minified uniform arrays: %w", err)
	}
	if len(declared) != len(d.UniformArrays) {
		return diagnostic.Structural("minifier returned %d uniform arrays, expected %d",
			len(declared), len(d.UniformArrays))
	}
	for i := range declared {
		d.UniformArrays[i].MinifiedName = declared[i].Name
	}
	return nil
}

func (m *Minifier) assignVariableNames(d *shader.Descriptor, code string) error {
	declared, err := glsl.ParseVariables(code)
	if err != nil {
		return fmt.Errorf("parsing minified variables: %w", err)
	}
	vars := d.NonUniformVariables()
	if len(declared) != len(vars) {
		return diagnostic.Structural("minifier returned %d variables, expected %d",
			len(declared), len(vars))
	}
	for i, v := range vars {
		v.MinifiedName = declared[i].Name
	}
	return nil
}

// repairArrayNames replaces leftover references to an array's original name
// with its minified name. The minifier renames the array declaration but can
// miss element references it did not see declared.
func (m *Minifier) repairArrayNames(d *shader.Descriptor, code string) string {
	for _, array := range d.UniformArrays {
		if array.MinifiedName != "" {
			code = m.ids.Replace(code, array.Name, array.MinifiedName)
		}
	}
	return code
}
