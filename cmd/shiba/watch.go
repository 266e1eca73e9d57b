package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/HugoDaniel/shiba/internal/config"
)

// watchDelay coalesces the bursts of events editors produce on save.
const watchDelay = 100 * time.Millisecond

func newWatchCommand(g *globalFlags) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rebuild the project whenever its shader or settings change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watch(ctx, dir, func() error {
				return runBuild(cmd, g, f, dir)
			})
		},
	}
	cmd.Flags().StringSliceVarP(&f.targets, "target", "t", []string{"executable"},
		"build `target` (executable or library); repeatable")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write output to `file` (default: stdout)")
	return cmd
}

// watch calls build once, then again after every change to a file in dir
// that can affect the result, until ctx is done. Build errors are logged,
// not returned.
func watch(ctx context.Context, dir string, build func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	rebuild := func() {
		if err := build(); err != nil {
			slog.Error("build failed", "err", err)
		}
	}
	rebuild()

	timer := time.NewTimer(0)
	<-timer.C
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			slog.Debug("change detected", "file", event.Name, "op", event.Op.String())
			timer.Reset(watchDelay)
		case <-timer.C:
			rebuild()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "err", err)
		}
	}
}

// relevant reports whether event touches a shader source or a settings
// file. Editor swap and backup files are ignored.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if slices.Contains(config.SettingsFileNames, name) {
		return true
	}
	switch filepath.Ext(name) {
	case ".frag", ".vert", ".glsl":
		return true
	}
	return false
}
