package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Long: `Merge a branch into the current branch.

Files changed on both branches are conflicts. They are always resolved by
taking the incoming branch's version; the current branch's content for those
files is discarded without markers. Each such file is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branchName := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			current := r.Branch
			fmt.Fprintf(out, "merging %s into %s...\n", branchName, current)

			report, err := r.Merge(branchName, author)
			if err != nil {
				return err
			}

			for _, f := range report.Files {
				printFileReport(out, f, branchName)
			}
			if n := len(report.Conflicts); n > 0 {
				fmt.Fprintf(out, "merge completed with %d conflict", n)
				if n != 1 {
					fmt.Fprint(out, "s")
				}
				fmt.Fprintf(out, " (incoming version from '%s' kept)\n", branchName)
			} else {
				fmt.Fprintln(out, "merge completed cleanly")
			}
			fmt.Fprintf(out, "[%s %s] Merge branch '%s' into %s\n", current, report.Commit.Short(), branchName, current)
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "override author (default: settings, $VCS_AUTHOR, $USER)")

	return cmd
}

func printFileReport(out io.Writer, f repo.FileMergeReport, branch string) {
	switch f.Status {
	case repo.MergeConflict:
		fmt.Fprintf(out, "  CONFLICT %s: took version from '%s'\n", f.Path, branch)
	case repo.MergeTheirs:
		fmt.Fprintf(out, "  + %s\n", f.Path)
	}
}
