package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/odvcencio/minivcs/pkg/diff"
	"github.com/odvcencio/minivcs/pkg/object"
	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var color bool

	cmd := &cobra.Command{
		Use:   "diff [path | path commit | commit commit]",
		Short: "Show line changes",
		Long: `Show line changes.

With no arguments, every tracked file whose working copy differs from its
staged version (or its committed version when not staged) is shown. With a
path, only that file. With a path and a commit, the file as recorded in that
commit is compared to the working copy. With two commits, their trees are
compared.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var diffs []*diff.FileDiff
			switch len(args) {
			case 0:
				diffs, err = r.DiffWorkingAll()
			case 1:
				var d *diff.FileDiff
				d, err = r.DiffWorking(args[0])
				diffs = nonEmpty(d)
			case 2:
				if isCommit(r, args[0]) && isCommit(r, args[1]) {
					diffs, err = r.DiffCommits(object.Hash(args[0]), object.Hash(args[1]))
				} else {
					var d *diff.FileDiff
					d, err = r.DiffCommitWorking(args[0], object.Hash(args[1]))
					diffs = nonEmpty(d)
				}
			}
			if err != nil {
				return err
			}

			return writeDiffs(cmd.OutOrStdout(), diffs, color)
		},
	}

	cmd.Flags().BoolVar(&color, "color", false, "colorize output for a 256-color terminal")

	return cmd
}

// isCommit reports whether s is a full hash naming a stored commit.
func isCommit(r *repo.Repo, s string) bool {
	if !object.IsHash(s) {
		return false
	}
	_, err := r.Store.ReadCommit(object.Hash(s))
	return err == nil
}

func nonEmpty(d *diff.FileDiff) []*diff.FileDiff {
	if d.Empty() {
		return nil
	}
	return []*diff.FileDiff{d}
}

func writeDiffs(out io.Writer, diffs []*diff.FileDiff, color bool) error {
	var buf bytes.Buffer
	for _, d := range diffs {
		if err := diff.Format(&buf, d); err != nil {
			return err
		}
	}
	if buf.Len() == 0 {
		return nil
	}
	if color {
		return diff.Colorize(out, buf.String())
	}
	_, err := out.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write diff: %w", err)
	}
	return nil
}
