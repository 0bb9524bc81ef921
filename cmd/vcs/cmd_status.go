package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged, modified and untracked files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			report, err := r.Status()
			if err != nil {
				return err
			}
			head, err := r.Head()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if head == "" {
				fmt.Fprintf(out, "on %s (no commits yet)\n", r.Branch)
			} else {
				fmt.Fprintf(out, "on %s\n", r.Branch)
			}

			if report.Clean() {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
				return nil
			}
			printStatusSection(out, "staged:", "  + ", report.Staged)
			printStatusSection(out, "modified:", "  ~ ", report.Modified)
			printStatusSection(out, "untracked:", "  ", report.Untracked)
			return nil
		},
	}
}

func printStatusSection(out io.Writer, title, prefix string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, title)
	for _, p := range paths {
		fmt.Fprintf(out, "%s%s\n", prefix, p)
	}
}
