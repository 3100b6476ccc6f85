package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aledsdavies/cadence/core/routine"
	"github.com/aledsdavies/cadence/core/types"
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var program string

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Show the exercise programs of a routine file and their timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadProgram(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			programs := doc.ExercisePrograms()
			if program != "" {
				ep, err := selectProgram(doc, program)
				if err != nil {
					return err
				}
				programs = []*routine.ExerciseProgram{ep}
			}

			for i, ep := range programs {
				if i > 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				a.showProgram(cmd.OutOrStdout(), ep)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&program, "program", "p", "", "Only show the named exercise program")
	return cmd
}

// showProgram prints one program with the start offset of each exercise.
func (a *app) showProgram(w io.Writer, ep *routine.ExerciseProgram) {
	_, _ = fmt.Fprintf(w, "%s  %s\n", Colorize(ep.Name(), ColorCyan, a.useColor), types.Format(ep.Duration()))

	exercises := ep.Exercises()
	if len(exercises) == 0 {
		_, _ = fmt.Fprintln(w, "  (no exercises)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, ex := range exercises {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s x %s\t%s\n",
			types.Format(ep.Offset(i)), ex.Name(),
			count(ex.Sets(), "set"), count(ex.Repetitions(), "rep"),
			types.Format(ex.Duration()))
	}
	_ = tw.Flush()
}
