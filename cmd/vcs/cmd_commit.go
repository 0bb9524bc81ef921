package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	var author string

	cmd := &cobra.Command{
		Use:   "commit [message...]",
		Short: "Record the staged files as a new commit",
		Long: `Record the staged files as a new commit.

The snapshot holds only the files staged with "add" since the last commit;
the index is cleared afterwards. A file committed earlier but not staged
again is left out of the new commit, then shows as untracked, and a later
checkout of that commit deletes it from the working tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				message = strings.Join(args, " ")
			} else if len(args) > 0 {
				return fmt.Errorf("commit message given twice (-m and arguments)")
			}
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit message is required")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			h, err := r.Commit(message, author)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", r.Branch, h.Short(), firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "override author (default: settings, $VCS_AUTHOR, $USER)")

	return cmd
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
