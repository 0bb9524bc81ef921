package main

import (
	"fmt"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <paths...>",
		Short: "Stage file contents for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if err := r.Add(args); err != nil {
				return err
			}
			for _, p := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", p)
			}
			return nil
		},
	}
}
