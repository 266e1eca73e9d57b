// Package config loads the user configuration and the project settings.
//
// The user configuration lives in ~/.shiba/config.yml and holds
// machine-specific paths such as the location of the shader minifier. The
// project settings are read from shiba.yml, shiba.yaml or shiba.toml,
// searched for in the project directory and its parents.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/HugoDaniel/shiba/internal/document"
	"github.com/HugoDaniel/shiba/internal/provider"
)

// UserConfigPath is the user configuration file, before home expansion.
const UserConfigPath = "~/.shiba/config.yml"

// UserConfig holds machine-specific settings.
type UserConfig struct {
	Paths Paths `yaml:"paths"`
}

// Paths locates external tools.
type Paths struct {
	ShaderMinifier string `yaml:"shader-minifier,omitempty"`
}

// LoadUser reads the user configuration at path, or at UserConfigPath when
// path is empty. A missing file yields the zero configuration.
func LoadUser(path string) (*UserConfig, error) {
	if path == "" {
		path = UserConfigPath
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	var cfg UserConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Settings represents the project settings file. All fields are optional
// and fall back to provider.DefaultOptions.
type Settings struct {
	Name string `yaml:"name" toml:"name"`

	// Development is exposed to shader templates.
	Development *bool `yaml:"development,omitempty" toml:"development,omitempty"`

	ShaderProvider ShaderProviderSettings `yaml:"shader-provider" toml:"shader-provider"`
	ShaderMinifier ShaderMinifierSettings `yaml:"shader-minifier" toml:"shader-minifier"`
}

// ShaderProviderSettings selects and preprocesses the shader file.
type ShaderProviderSettings struct {
	Filename string `yaml:"filename,omitempty" toml:"filename,omitempty"`

	// Grammar is "index" or "name".
	Grammar string `yaml:"grammar,omitempty" toml:"grammar,omitempty"`

	Template *bool `yaml:"template,omitempty" toml:"template,omitempty"`
}

// ShaderMinifierSettings controls the external minifier.
type ShaderMinifierSettings struct {
	Enabled *bool `yaml:"enabled,omitempty" toml:"enabled,omitempty"`

	// Args are extra arguments, written as a shell command line.
	Args string `yaml:"args,omitempty" toml:"args,omitempty"`

	KeepWorkDir *bool `yaml:"keep-work-dir,omitempty" toml:"keep-work-dir,omitempty"`
}

// SettingsFileNames are the names searched for settings files, in order of
// preference.
var SettingsFileNames = []string{
	"shiba.yml",
	"shiba.yaml",
	"shiba.toml",
}

// Load searches for a settings file starting from the given directory and
// walking up to parent directories. It returns nil settings if none is
// found.
func Load(startDir string) (*Settings, string, error) {
	dir := startDir
	for {
		for _, name := range SettingsFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				s, err := LoadFile(path)
				return s, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads settings from a specific file. The format follows the
// extension.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Settings
	if filepath.Ext(path) == ".toml" {
		d := toml.NewDecoder(bytes.NewReader(data))
		d.DisallowUnknownFields()
		err = d.Decode(&s)
	} else {
		d := yaml.NewDecoder(bytes.NewReader(data))
		d.KnownFields(true)
		err = d.Decode(&s)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// ToOptions converts settings and user configuration to provider options,
// using defaults for unset fields. Either may be nil.
func (s *Settings) ToOptions(user *UserConfig) (provider.Options, error) {
	opts := provider.DefaultOptions()

	if user != nil && user.Paths.ShaderMinifier != "" {
		path, err := homedir.Expand(user.Paths.ShaderMinifier)
		if err != nil {
			return opts, err
		}
		opts.Minifier.Path = path
	}

	if s == nil {
		return opts, nil
	}

	if s.Development != nil {
		opts.Development = *s.Development
	}
	if s.ShaderProvider.Filename != "" {
		opts.Filename = s.ShaderProvider.Filename
	}
	if s.ShaderProvider.Grammar != "" {
		g, err := document.ParseGrammar(s.ShaderProvider.Grammar)
		if err != nil {
			return opts, fmt.Errorf("shader-provider.grammar: %w", err)
		}
		if g == document.GrammarMinifier {
			return opts, fmt.Errorf("shader-provider.grammar: %q is reserved for minifier output", s.ShaderProvider.Grammar)
		}
		opts.Grammar = g
	}
	if s.ShaderProvider.Template != nil {
		opts.Template = *s.ShaderProvider.Template
	}
	if s.ShaderMinifier.Enabled != nil {
		opts.Minify = *s.ShaderMinifier.Enabled
	}
	if s.ShaderMinifier.Args != "" {
		args, err := shellwords.Parse(s.ShaderMinifier.Args)
		if err != nil {
			return opts, fmt.Errorf("shader-minifier.args: %w", err)
		}
		opts.Minifier.Args = args
	}
	if s.ShaderMinifier.KeepWorkDir != nil {
		opts.Minifier.KeepWorkDir = *s.ShaderMinifier.KeepWorkDir
	}

	return opts, nil
}

// MergeOptions holds command-line overrides.
type MergeOptions struct {
	// Development and MinifierPath are applied when set.
	Development  *bool
	MinifierPath string

	NoMinify    bool
	KeepWorkDir bool
	Force       bool
	CacheDir    string

	// MinifierArgs are appended to the configured arguments.
	MinifierArgs []string
}

// Merge merges command-line options with the settings and the user
// configuration. Command-line options take precedence.
func (s *Settings) Merge(user *UserConfig, cli MergeOptions) (provider.Options, error) {
	opts, err := s.ToOptions(user)
	if err != nil {
		return opts, err
	}

	if cli.Development != nil {
		opts.Development = *cli.Development
	}
	if cli.MinifierPath != "" {
		path, err := homedir.Expand(cli.MinifierPath)
		if err != nil {
			return opts, err
		}
		opts.Minifier.Path = path
	}
	if cli.NoMinify {
		opts.Minify = false
	}
	if cli.KeepWorkDir {
		opts.Minifier.KeepWorkDir = true
	}
	if cli.Force {
		opts.Force = true
	}
	if cli.CacheDir != "" {
		opts.CacheDir = cli.CacheDir
	}
	if len(cli.MinifierArgs) > 0 {
		opts.Minifier.Args = append(opts.Minifier.Args, cli.MinifierArgs...)
	}

	return opts, nil
}
