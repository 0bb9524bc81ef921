package main

import (
	"fmt"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newGcCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Delete objects unreachable from branches, reflogs and the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			summary, err := r.GC(dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summary.Pruned) == 0 {
				fmt.Fprintln(out, "nothing to prune")
				return nil
			}
			verb := "pruned"
			if dryRun {
				verb = "would prune"
				for _, h := range summary.Pruned {
					fmt.Fprintf(out, "  %s\n", h)
				}
			}
			fmt.Fprintf(out, "%s %d object(s), kept %d\n", verb, len(summary.Pruned), summary.Kept)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "list what would be pruned without deleting")

	return cmd
}
