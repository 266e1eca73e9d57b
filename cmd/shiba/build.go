package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/HugoDaniel/shiba/internal/provider"
	"github.com/HugoDaniel/shiba/internal/shader"
)

type buildFlags struct {
	targets []string
	output  string
}

func newBuildCommand(g *globalFlags) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Build the shader descriptor of a project",
		Long: "Build the shader descriptor of a project for every requested target.\n" +
			"The result is a JSON object mapping each target to its descriptor.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			return runBuild(cmd, g, f, dir)
		},
	}
	cmd.Flags().StringSliceVarP(&f.targets, "target", "t", []string{string(provider.TargetExecutable)},
		"build `target` (executable or library); repeatable")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write output to `file` (default: stdout)")
	return cmd
}

func runBuild(cmd *cobra.Command, g *globalFlags, f *buildFlags, dir string) error {
	opts, err := g.options(cmd, dir)
	if err != nil {
		return err
	}

	targets := make([]provider.Target, 0, len(f.targets))
	for _, name := range f.targets {
		t, err := provider.ParseTarget(name)
		if err != nil {
			return err
		}
		targets = append(targets, t)
	}

	descriptors, err := buildTargets(dir, opts, targets)
	if err != nil {
		return err
	}

	result := make(map[provider.Target]*shader.Descriptor, len(targets))
	for i, t := range targets {
		result[t] = descriptors[i]
	}
	if err := writeJSON(cmd.OutOrStdout(), f.output, result); err != nil {
		return err
	}
	slog.Info("built", "project", dir, "targets", len(targets))
	return nil
}

// buildTargets builds every target concurrently. Each build owns its
// provider, so nothing is shared between goroutines but the cache
// directory.
func buildTargets(dir string, opts provider.Options, targets []provider.Target) ([]*shader.Descriptor, error) {
	descriptors := make([]*shader.Descriptor, len(targets))
	var eg errgroup.Group
	for i, t := range targets {
		i, t := i, t
		eg.Go(func() error {
			p, err := provider.New(dir, opts)
			if err != nil {
				return err
			}
			d, err := p.Provide(t)
			if err != nil {
				return fmt.Errorf("building %s: %w", t, err)
			}
			descriptors[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return descriptors, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
