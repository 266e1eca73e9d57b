package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/shiba/internal/document"
	"github.com/HugoDaniel/shiba/internal/provider"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiba.yml")
	writeFile(t, path, `name: demo
development: true
shader-provider:
  filename: main.glsl
  grammar: name
  template: false
shader-minifier:
  args: --preserve-externals --no-renaming-list "main, mainImage"
  keep-work-dir: true
`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)
	require.NotNil(t, s.Development)
	assert.True(t, *s.Development)
	assert.Equal(t, "main.glsl", s.ShaderProvider.Filename)

	opts, err := s.ToOptions(nil)
	require.NoError(t, err)
	assert.True(t, opts.Development)
	assert.Equal(t, "main.glsl", opts.Filename)
	assert.Equal(t, document.GrammarNamed, opts.Grammar)
	assert.False(t, opts.Template)
	assert.True(t, opts.Minify)
	assert.True(t, opts.Minifier.KeepWorkDir)
	assert.Equal(t, []string{"--preserve-externals", "--no-renaming-list", "main, mainImage"}, opts.Minifier.Args)
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiba.toml")
	writeFile(t, path, `name = "demo"

[shader-minifier]
enabled = false
`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)

	opts, err := s.ToOptions(nil)
	require.NoError(t, err)
	assert.False(t, opts.Minify)
	assert.Equal(t, provider.DefaultFilename, opts.Filename)
}

func TestLoadFileErrors(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown yaml key", "shiba.yml", "shader-provider:\n  filenme: x\n"},
		{"unknown toml key", "shiba.toml", "nmae = \"x\"\n"},
		{"malformed yaml", "shiba.yml", "name: [\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			writeFile(t, path, tc.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestEmptySettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiba.yml")
	writeFile(t, path, "")

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, &Settings{}, s)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "project", "shaders")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	settingsPath := filepath.Join(root, "project", "shiba.yaml")
	writeFile(t, settingsPath, "name: parent\n")

	s, found, err := Load(sub)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, settingsPath, found)
	assert.Equal(t, "parent", s.Name)
}

func TestLoadPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shiba.toml"), "name = \"toml\"\n")
	writeFile(t, filepath.Join(dir, "shiba.yml"), "name: yaml\n")

	s, _, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "yaml", s.Name)
}

func TestLoadNoSettings(t *testing.T) {
	s, found, err := Load(t.TempDir())
	require.NoError(t, err)
	// A settings file could exist above the temp directory; only check
	// consistency.
	if s == nil {
		assert.Empty(t, found)
	}

	var none *Settings
	opts, err := none.ToOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, provider.DefaultOptions(), opts)
}

func TestInvalidSettings(t *testing.T) {
	cases := []struct {
		name     string
		settings Settings
	}{
		{"unknown grammar", Settings{ShaderProvider: ShaderProviderSettings{Grammar: "names"}}},
		{"minifier grammar", Settings{ShaderProvider: ShaderProviderSettings{Grammar: "minifier"}}},
		{"unterminated args", Settings{ShaderMinifier: ShaderMinifierSettings{Args: `--x "y`}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.settings.ToOptions(nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, "paths:\n  shader-minifier: /opt/shader_minifier.exe\n")

	user, err := LoadUser(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/shader_minifier.exe", user.Paths.ShaderMinifier)

	var s *Settings
	opts, err := s.ToOptions(user)
	require.NoError(t, err)
	assert.Equal(t, "/opt/shader_minifier.exe", opts.Minifier.Path)
}

func TestLoadUserMissing(t *testing.T) {
	user, err := LoadUser(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, &UserConfig{}, user)
}

func TestMerge(t *testing.T) {
	s := &Settings{ShaderMinifier: ShaderMinifierSettings{Args: "--a"}}
	user := &UserConfig{Paths: Paths{ShaderMinifier: "/usr/bin/minifier"}}
	dev := true

	opts, err := s.Merge(user, MergeOptions{
		Development:  &dev,
		MinifierPath: "/opt/other",
		KeepWorkDir:  true,
		Force:        true,
		CacheDir:     "/tmp/cache",
		MinifierArgs: []string{"--b"},
	})
	require.NoError(t, err)
	assert.True(t, opts.Development)
	assert.Equal(t, "/opt/other", opts.Minifier.Path)
	assert.True(t, opts.Minifier.KeepWorkDir)
	assert.True(t, opts.Force)
	assert.Equal(t, "/tmp/cache", opts.CacheDir)
	assert.Equal(t, []string{"--a", "--b"}, opts.Minifier.Args)
	assert.True(t, opts.Minify)
}

func TestMergeNoMinify(t *testing.T) {
	enabled := true
	s := &Settings{ShaderMinifier: ShaderMinifierSettings{Enabled: &enabled}}

	opts, err := s.Merge(nil, MergeOptions{NoMinify: true})
	require.NoError(t, err)
	assert.False(t, opts.Minify)
}

func TestSettingsFileNames(t *testing.T) {
	assert.Equal(t, []string{"shiba.yml", "shiba.yaml", "shiba.toml"}, SettingsFileNames)
}
