// Package provider turns a shader file on disk into a finished descriptor.
//
// The pipeline reads the file, renders it as a template, splits it into
// sections, builds the descriptor, runs the semantic passes and, when
// enabled, round-trips it through the external minifier. Finished
// descriptors are cached by the hash of their inputs.
package provider

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/HugoDaniel/shiba/internal/analyzer"
	"github.com/HugoDaniel/shiba/internal/builder"
	"github.com/HugoDaniel/shiba/internal/cache"
	"github.com/HugoDaniel/shiba/internal/document"
	"github.com/HugoDaniel/shiba/internal/minifier"
	"github.com/HugoDaniel/shiba/internal/shader"
)

// DefaultFilename is the shader file read from a project directory.
const DefaultFilename = "shader.frag"

// Options controls the pipeline.
type Options struct {
	// Filename is the shader file, relative to the project directory.
	Filename string

	// Grammar selects how stage directives address programs.
	Grammar document.Grammar

	// Template renders the source as a text/template before parsing.
	Template bool

	// Development is exposed to the template.
	Development bool

	// Minify enables the external minifier round trip.
	Minify bool

	Minifier minifier.Options

	// CacheDir holds finished descriptors. Empty disables caching.
	CacheDir string

	// Force ignores existing cache entries. New entries are still written.
	Force bool
}

// DefaultOptions returns the default pipeline options.
func DefaultOptions() Options {
	return Options{
		Filename: DefaultFilename,
		Grammar:  document.GrammarIndexed,
		Template: true,
		Minify:   true,
	}
}

// TemplateData is the data a shader template is rendered with.
type TemplateData struct {
	Development bool
	Target      Target
}

// Provider builds descriptors for one project. A Provider is not safe for
// concurrent use; concurrent builds use one Provider each.
type Provider struct {
	dir      string
	options  Options
	cache    *cache.Cache
	analyzer *analyzer.Analyzer
	minifier *minifier.Minifier
}

// New creates a provider for the project in dir. When minification is
// enabled and no minifier is configured it fails with a configuration error
// before anything is read.
func New(dir string, options Options) (*Provider, error) {
	if options.Filename == "" {
		options.Filename = DefaultFilename
	}
	p := &Provider{dir: dir, options: options, analyzer: analyzer.New()}

	if options.Minify {
		m, err := minifier.New(options.Minifier)
		if err != nil {
			return nil, err
		}
		p.minifier = m
	}

	if options.CacheDir != "" {
		c, err := cache.Open(options.CacheDir)
		if err != nil {
			return nil, err
		}
		p.cache = c
	}

	return p, nil
}

// Path returns the shader file the provider reads.
func (p *Provider) Path() string {
	return filepath.Join(p.dir, p.options.Filename)
}

// Provide builds the descriptor of the project for target.
func (p *Provider) Provide(target Target) (*shader.Descriptor, error) {
	path := p.Path()
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shader %s: %w", path, err)
	}

	key := cache.Key(source, []byte(target), []byte(strconv.FormatBool(p.options.Development)),
		[]byte(p.options.Grammar.String()), []byte(strconv.FormatBool(p.options.Template)))

	d, err := p.cached(key, func() (*shader.Descriptor, error) {
		return p.build(path, string(source), target)
	})
	if err != nil || p.minifier == nil {
		return d, err
	}

	return p.cached(p.minifierKey(key), func() (*shader.Descriptor, error) {
		minified, err := p.minifier.Minify(d)
		if err != nil {
			return nil, err
		}
		slog.Debug("minified", "shader", path, "variables", len(minified.NonUniformVariables()),
			"uniform-arrays", len(minified.UniformArrays))
		return minified, nil
	})
}

// cached returns the entry stored under key, or computes and stores it.
func (p *Provider) cached(key string, compute func() (*shader.Descriptor, error)) (*shader.Descriptor, error) {
	if p.cache != nil && !p.options.Force {
		var d shader.Descriptor
		ok, err := p.cache.Load(key, &d)
		if err != nil {
			return nil, err
		}
		if ok {
			return &d, nil
		}
	}

	d, err := compute()
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Store(key, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// minifierKey extends key with the identity of the minifier binary, so that
// upgrading the tool invalidates minified entries.
func (p *Provider) minifierKey(key string) string {
	parts := [][]byte{[]byte(key), []byte(p.options.Minifier.Path)}
	if info, err := os.Stat(p.options.Minifier.Path); err == nil {
		parts = append(parts,
			[]byte(strconv.FormatInt(info.Size(), 10)),
			[]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	}
	for _, arg := range p.minifier.Args() {
		parts = append(parts, []byte(arg))
	}
	return cache.Key(parts...)
}

func (p *Provider) build(path, source string, target Target) (*shader.Descriptor, error) {
	if p.options.Template {
		rendered, err := Render(filepath.Base(path), source, TemplateData{
			Development: p.options.Development,
			Target:      target,
		})
		if err != nil {
			return nil, err
		}
		source = rendered
	}

	d, stats, err := compile(source, p.options.Grammar, p.analyzer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("analyzed", "shader", path, "target", target,
		"inlined", stats.Inlined, "dead", stats.Dead, "bucketed", stats.Bucketed)
	return d, nil
}

// Render executes source as a text/template with data.
func Render(name, source string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("parsing shader template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering shader template: %w", err)
	}
	return buf.String(), nil
}

// Compile parses, builds and analyzes source.
func Compile(source string, grammar document.Grammar) (*shader.Descriptor, analyzer.Stats, error) {
	return compile(source, grammar, analyzer.New())
}

func compile(source string, grammar document.Grammar, an *analyzer.Analyzer) (*shader.Descriptor, analyzer.Stats, error) {
	contents, err := document.Parse(source, grammar)
	if err != nil {
		return nil, analyzer.Stats{}, err
	}
	d, err := builder.Build(contents)
	if err != nil {
		return nil, analyzer.Stats{}, err
	}
	stats := an.Analyze(d)
	return d, stats, nil
}
