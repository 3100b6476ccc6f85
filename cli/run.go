package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aledsdavies/cadence/core/types"
	"github.com/aledsdavies/cadence/runtime/executor"
	"github.com/aledsdavies/cadence/runtime/history"
	"github.com/aledsdavies/cadence/runtime/media"
	"github.com/aledsdavies/cadence/runtime/parser"
	"github.com/aledsdavies/cadence/runtime/session"
	"github.com/spf13/cobra"
)

type runOptions struct {
	program string
	skip    string
	resume  bool
	dryRun  bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Play back an exercise program",
		Long: `Play back an exercise program.

While running, press p (or space) to pause and resume, n to skip to the
next exercise, b to go back, and q to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.program, "program", "p", "", "Exercise program to run (required when the file has several)")
	cmd.Flags().StringVar(&opts.skip, "skip", "", "Start this far into the program, e.g. 2m30s")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Continue the last unfinished run of this program")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print prompts and cues without waiting or making sound")
	cmd.MarkFlagsMutuallyExclusive("skip", "resume")
	return cmd
}

func (a *app) run(cmd *cobra.Command, file string, opts runOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	doc, _, err := loadProgram(file, cmd.InOrStdin())
	if err != nil {
		return err
	}
	ep, err := selectProgram(doc, opts.program)
	if err != nil {
		return err
	}

	var from time.Duration
	if opts.skip != "" {
		from, err = parser.ParseDuration(opts.skip)
		if err != nil {
			return &CLIError{Type: "run", Message: fmt.Sprintf("invalid --skip: %v", err), Hint: "Use a duration such as 1m 30s"}
		}
	}

	var journal session.Journal
	var store *history.Store
	if a.cfg.History.Enabled && !opts.dryRun {
		store, err = history.Open(a.cfg.History.Path)
		if err != nil {
			a.logger.Warn("history unavailable", "path", a.cfg.History.Path, "error", err)
		} else {
			defer store.Close()
			journal = store
		}
	}

	var keys *keyboard
	if !opts.dryRun && file != "-" {
		keys = openKeyboard(cmd.InOrStdin(), a.logger)
		defer keys.Close()
		out = keys.Writer(out)
	}

	exec := executor.New(a.collaborators(out, opts.dryRun))
	sess, err := session.New(ep, session.Config{
		Executor:           exec,
		Logger:             a.logger,
		Journal:            journal,
		RestartThreshold:   a.cfg.RestartThreshold(),
		CheckpointInterval: a.cfg.CheckpointInterval(),
	})
	if err != nil {
		return err
	}

	if opts.resume {
		if store == nil {
			return &CLIError{Type: "history", Message: "--resume needs run history", Hint: "Enable history in the config file"}
		}
		last, err := store.LastIncomplete(ctx, sess.Fingerprint())
		switch {
		case errors.Is(err, history.ErrNotFound):
			_, _ = fmt.Fprintln(out, "Nothing to resume; starting from the beginning.")
		case err != nil:
			return err
		default:
			from = last.Position
			_, _ = fmt.Fprintf(out, "Resuming %s at %s.\n", ep.Name(), types.Format(from))
		}
	}

	display := newProgressDisplay(out, ep, a.useColor)
	sess.OnUpdate(display.update)
	if keys != nil {
		keys.Listen(sess)
	}

	result, err := sess.Run(ctx, from)
	display.finish(result)
	return err
}

// collaborators picks the speaker, player and delayer for a run. Without a
// configured command, speech and audio cues are printed.
func (a *app) collaborators(out io.Writer, dryRun bool) executor.Config {
	console := media.NewConsole(out)
	config := executor.Config{Speaker: console, Player: console, Delayer: media.Clock{}, Logger: a.logger}
	if dryRun {
		config.Delayer = media.Instant{}
		return config
	}

	if len(a.cfg.Speech.Command) > 0 {
		config.Speaker = &media.CommandSpeaker{Command: a.cfg.Speech.Command}
	}
	if len(a.cfg.Audio.Command) > 0 {
		config.Player = &media.CommandPlayer{Command: a.cfg.Audio.Command, Resources: a.cfg.Audio.Resources}
	}
	return config
}
