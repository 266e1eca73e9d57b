// Command shiba compiles annotated GLSL shader documents into shader
// descriptors.
//
// Usage:
//
//	shiba build [dir] [--target executable|library ...] [--force] [--no-minify] [-o file]
//	shiba standalone [dir] [-o dir]
//	shiba reflect [dir]
//	shiba watch [dir]
//	shiba version
//
// Configuration:
//
//	The path of the external shader minifier is read from ~/.shiba/config.yml:
//
//	    paths:
//	      shader-minifier: ~/tools/shader_minifier.exe
//
//	Project settings are read from shiba.yml, shiba.yaml or shiba.toml in the
//	project directory or one of its parents. Command-line flags override them.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HugoDaniel/shiba/internal/config"
	"github.com/HugoDaniel/shiba/internal/logx"
	"github.com/HugoDaniel/shiba/internal/provider"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	userConfig   string
	cacheDir     string
	noCache      bool
	minifierPath string
	development  bool
	keepWorkDir  bool
	noMinify     bool
	force        bool

	veryVerbose bool
	verbose     bool
	quiet       bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "shiba",
		Short:         "Compile annotated GLSL documents into shader descriptors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logx.SetDefault(logx.LevelFromFlags(g.veryVerbose, g.verbose, g.quiet), stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&g.userConfig, "config", "", "user configuration `file` (default ~/.shiba/config.yml)")
	flags.StringVar(&g.cacheDir, "cache-dir", "", "build cache `dir` (default: user cache directory)")
	flags.BoolVar(&g.noCache, "no-cache", false, "disable the build cache")
	flags.StringVar(&g.minifierPath, "minifier", "", "shader minifier `path`, overriding paths.shader-minifier")
	flags.BoolVar(&g.development, "development", false, "build in development mode")
	flags.BoolVar(&g.keepWorkDir, "keep-work-dir", false, "keep the minifier work directory")
	flags.BoolVar(&g.noMinify, "no-minify", false, "skip the shader minifier")
	flags.BoolVar(&g.force, "force", false, "ignore cached results")
	flags.BoolVar(&g.veryVerbose, "vv", false, "log debug messages")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log informational messages")
	flags.BoolVarP(&g.quiet, "quiet", "q", false, "only log errors")

	root.AddCommand(
		newBuildCommand(g),
		newStandaloneCommand(g),
		newReflectCommand(g),
		newWatchCommand(g),
		newVersionCommand(),
	)
	return root
}

// projectDir returns the directory argument, or the working directory.
func projectDir(args []string) (string, error) {
	if len(args) > 0 {
		return filepath.Abs(args[0])
	}
	return os.Getwd()
}

// options resolves the provider options of the project in dir.
func (g *globalFlags) options(cmd *cobra.Command, dir string) (provider.Options, error) {
	user, err := config.LoadUser(g.userConfig)
	if err != nil {
		return provider.Options{}, fmt.Errorf("loading user configuration: %w", err)
	}

	settings, path, err := config.Load(dir)
	if err != nil {
		return provider.Options{}, fmt.Errorf("loading settings: %w", err)
	}
	if path != "" {
		slog.Debug("using settings", "path", path)
	}

	cli := config.MergeOptions{
		MinifierPath: g.minifierPath,
		NoMinify:     g.noMinify,
		KeepWorkDir:  g.keepWorkDir,
		Force:        g.force,
	}
	if cmd.Flags().Changed("development") {
		cli.Development = &g.development
	}
	if !g.noCache {
		cli.CacheDir = g.cacheDir
		if cli.CacheDir == "" {
			if dir, err := os.UserCacheDir(); err == nil {
				cli.CacheDir = filepath.Join(dir, "shiba")
			}
		}
	}

	return settings.Merge(user, cli)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shiba v%s (%s)\n", version, commit)
		},
	}
}
