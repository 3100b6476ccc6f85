package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/aledsdavies/cadence/core/types"
	"github.com/aledsdavies/cadence/runtime/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.History.Enabled {
				return &CLIError{Type: "history", Message: "run history is disabled", Hint: "Set history.enabled: true in the config file"}
			}

			store, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "STARTED\tPROGRAM\tSTATUS\tPOSITION\tRUN")
			for _, run := range runs {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s / %s\t%s\n",
					run.StartedAt.Local().Format(time.DateTime), run.Program, run.Status,
					types.Format(run.Position), types.Format(run.Duration), shortID(run.ID))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
