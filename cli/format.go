package main

import (
	"fmt"
	"os"

	"github.com/aledsdavies/cadence/core/routine"
	"github.com/spf13/cobra"
)

func newFmtCmd(a *app) *cobra.Command {
	var (
		write bool
		check bool
	)

	cmd := &cobra.Command{
		Use:   "fmt FILE",
		Short: "Print a routine file in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			doc, src, err := loadProgram(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			formatted := routine.Format(doc)

			switch {
			case check:
				if formatted != src {
					return &CLIError{
						Type:    "format",
						Message: fmt.Sprintf("%s is not formatted", file),
						Hint:    "Run cadence fmt -w " + file,
					}
				}
				return nil
			case write && file != "-":
				if formatted == src {
					return nil
				}
				info, err := os.Stat(file)
				if err != nil {
					return err
				}
				a.logger.Info("formatted", "file", file)
				return os.WriteFile(file, []byte(formatted), info.Mode().Perm())
			default:
				_, err := fmt.Fprint(cmd.OutOrStdout(), formatted)
				return err
			}
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	cmd.Flags().BoolVar(&check, "check", false, "Fail if the file is not already formatted")
	return cmd
}
