package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/aledsdavies/cadence/core/types"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the bursts of events editors produce on save.
const watchDebounce = 100 * time.Millisecond

func newCheckCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse routine files and report errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return a.watch(cmd.Context(), cmd.OutOrStdout(), args)
			}
			return a.checkFiles(cmd.OutOrStdout(), cmd.InOrStdin(), args)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-check files whenever they change")
	return cmd
}

func (a *app) checkFiles(w io.Writer, stdin io.Reader, files []string) error {
	failed := 0
	for _, file := range files {
		doc, _, err := loadProgram(file, stdin)
		if err != nil {
			FormatError(w, err, a.useColor)
			failed++
			continue
		}

		programs := doc.ExercisePrograms()
		exercises := 0
		var total time.Duration
		for _, ep := range programs {
			exercises += len(ep.Exercises())
			total = types.SaturatingAdd(total, ep.Duration())
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s, %s, %s\n",
			Colorize("✓", ColorGreen, a.useColor), file,
			count(len(programs), "program"), count(exercises, "exercise"), types.Format(total))
	}

	if failed > 0 {
		return &CLIError{Type: "parse", Message: fmt.Sprintf("%d of %d files failed to parse", failed, len(files))}
	}
	return nil
}

func count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// watch checks files once, then again whenever one of them is written. It
// watches the containing directories so editors that save by renaming are
// still seen.
func (a *app) watch(ctx context.Context, w io.Writer, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]string, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		targets[abs] = file
		dir := filepath.Dir(abs)
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	_ = a.checkFiles(w, os.Stdin, files)

	pending := make(map[string]bool)
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			file, watched := targets[filepath.Clean(event.Name)]
			if !watched || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			pending[file] = true
			debounce = time.After(watchDebounce)

		case <-debounce:
			changed := make([]string, 0, len(pending))
			for file := range pending {
				changed = append(changed, file)
			}
			slices.Sort(changed)
			clear(pending)
			debounce = nil

			_, _ = fmt.Fprintln(w, Colorize("-- "+time.Now().Format(time.TimeOnly), ColorGray, a.useColor))
			_ = a.checkFiles(w, os.Stdin, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("file watcher error", "error", err)
		}
	}
}
