package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HugoDaniel/shiba/internal/provider"
	"github.com/HugoDaniel/shiba/internal/standalone"
)

func newStandaloneCommand(g *globalFlags) *cobra.Command {
	var output string
	target := provider.TargetExecutable

	cmd := &cobra.Command{
		Use:   "standalone [dir]",
		Short: "Write self-contained vertex and fragment shaders for every program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			opts, err := g.options(cmd, dir)
			if err != nil {
				return err
			}
			p, err := provider.New(dir, opts)
			if err != nil {
				return err
			}
			d, err := p.Provide(target)
			if err != nil {
				return err
			}

			if !filepath.IsAbs(output) {
				output = filepath.Join(dir, output)
			}
			files, err := writePasses(output, standalone.Passes(d))
			if err != nil {
				return err
			}
			slog.Info("wrote standalone shaders", "dir", output, "files", files)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "standalone", "output `dir`, relative to the project")
	cmd.Flags().VarP(&target, "target", "t", "build `target` (executable or library)")
	return cmd
}

// writePasses writes <program>.vert and <program>.frag for every non-empty
// stage and returns the number of files written.
func writePasses(dir string, passes []standalone.Pass) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}
	n := 0
	for _, pass := range passes {
		for ext, code := range map[string]string{".vert": pass.Vertex, ".frag": pass.Fragment} {
			if code == "" {
				continue
			}
			path := filepath.Join(dir, pass.Name+ext)
			if err := os.WriteFile(path, []byte(code+"\n"), 0o644); err != nil {
				return n, fmt.Errorf("writing %s: %w", path, err)
			}
			n++
		}
	}
	return n, nil
}
