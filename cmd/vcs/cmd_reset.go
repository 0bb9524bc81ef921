package main

import (
	"fmt"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [path...]",
		Short: "Unstage paths, restoring their index entries to HEAD",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			changed, err := r.Reset(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range changed {
				fmt.Fprintf(out, "unstaged %s\n", p)
			}
			return nil
		},
	}
}
