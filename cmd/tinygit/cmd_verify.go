package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/tinygit/pkg/object"
)

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <commit-or-tree>",
		Short: "Check every object reachable from a commit or tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := parseHashArg(args[0])
			if err != nil {
				return err
			}
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}

			report, err := r.Verify(root)
			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"ok: verified %d object(s): %d commit(s), %d tree(s), %d blob(s)\n",
				report.Objects,
				report.ByType[object.TypeCommit],
				report.ByType[object.TypeTree],
				report.ByType[object.TypeBlob],
			)
			return nil
		},
	}
}
