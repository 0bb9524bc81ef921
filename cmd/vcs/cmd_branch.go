package main

import (
	"fmt"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	var deleteBranch string

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if deleteBranch != "" {
				if len(args) > 0 {
					return fmt.Errorf("branch: -d takes a single branch name")
				}
				if err := r.DeleteBranch(deleteBranch); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted branch '%s'\n", deleteBranch)
				return nil
			}

			if len(args) == 1 {
				if err := r.CreateBranch(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "created branch '%s'\n", args[0])
				return nil
			}

			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			for _, b := range branches {
				if b == r.Branch {
					fmt.Fprintf(out, "* %s\n", b)
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")

	return cmd
}
