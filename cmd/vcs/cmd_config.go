package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/minivcs/pkg/repo"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get or set a repository setting",
		Long: `Get or set a value in .vcs/settings.toml.

Keys: ` + strings.Join(repo.SettingKeys, ", ") + `.

With only a key the current value is printed. With a value it is validated
and written; core.compression and diff.algorithm apply from the next command.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if list {
				for _, key := range repo.SettingKeys {
					v, _ := r.Settings.Get(key)
					fmt.Fprintf(out, "%s=%s\n", key, v)
				}
				return nil
			}

			if len(args) == 2 {
				return r.SetSetting(args[0], args[1])
			}
			v, err := r.Settings.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, v)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "print every setting")

	return cmd
}
