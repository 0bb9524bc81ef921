package main

import (
	"fmt"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check object integrity and reachability from branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			report, err := r.Verify()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, h := range report.Corrupt {
				fmt.Fprintf(out, "corrupt: %s\n", h)
			}
			for _, h := range report.Missing {
				fmt.Fprintf(out, "missing: %s\n", h)
			}
			if !report.OK() {
				return fmt.Errorf("verify: %d corrupt, %d missing object(s)", len(report.Corrupt), len(report.Missing))
			}
			fmt.Fprintf(out, "ok: verified %d object(s), %d reachable, %d unreachable\n",
				report.Objects, report.Reachable, len(report.Unreachable))
			return nil
		},
	}
}
