package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show first-parent commit history of the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			head, err := r.Head()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if head == "" {
				fmt.Fprintf(out, "branch %s has no commits yet\n", r.Branch)
				return nil
			}

			entries, err := r.LogFrom(head, limit)
			if err != nil {
				return err
			}

			for i, e := range entries {
				c := e.Commit
				decoration := ""
				if i == 0 {
					decoration = fmt.Sprintf(" (%s)", r.Branch)
				}
				if oneline {
					fmt.Fprintf(out, "%s%s %s\n", e.Hash.Short(), decoration, firstLine(c.Message))
					continue
				}

				fmt.Fprintf(out, "commit %s%s\n", e.Hash, decoration)
				if len(c.Parents) > 1 {
					fmt.Fprintf(out, "Merge:  %s %s\n", c.Parents[0].Short(), c.Parents[1].Short())
				}
				fmt.Fprintf(out, "Author: %s\n", c.Author)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Timestamp, 0).Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "show one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits (0 = all)")

	return cmd
}
