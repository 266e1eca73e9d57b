package main

import (
	"github.com/spf13/cobra"

	"github.com/HugoDaniel/shiba/internal/provider"
	"github.com/HugoDaniel/shiba/internal/reflect"
)

func newReflectCommand(g *globalFlags) *cobra.Command {
	var output string
	target := provider.TargetExecutable

	cmd := &cobra.Command{
		Use:   "reflect [dir]",
		Short: "Print the uniform array layout of a project as JSON",
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
			return writeJSON(cmd.OutOrStdout(), output, reflect.Uniforms(d))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to `file` (default: stdout)")
	cmd.Flags().VarP(&target, "target", "t", "build `target` (executable or library)")
	return cmd
}
