package main

import (
	"fmt"

	"github.com/odvcencio/minivcs/pkg/object"
	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <commit | branch | path> | -- <path>",
		Short: "Restore a commit, switch branches or restore a file",
		Long: `Restore a commit, switch branches or restore a file.

A full commit hash replaces the working directory with that commit's files
and moves the current branch to it. Files not in the commit, including
untracked ones, are deleted. A branch name switches to that branch. Anything
else is taken as a path and restored from the index, or from the current
commit when it is not staged. Use "--" to force a path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cmd.ArgsLenAtDash() != 0 {
				if isCommit(r, target) {
					if err := r.CheckoutCommit(object.Hash(target)); err != nil {
						return err
					}
					fmt.Fprintf(out, "checked out commit %s on %s\n", object.Hash(target).Short(), r.Branch)
					return nil
				}
				if r.BranchExists(target) {
					if err := r.SwitchBranch(target); err != nil {
						return err
					}
					fmt.Fprintf(out, "switched to branch '%s'\n", target)
					return nil
				}
			}

			source, err := r.CheckoutPath(target)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "restored %s from %s\n", target, source)
			return nil
		},
	}
}
