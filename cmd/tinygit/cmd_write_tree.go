package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWriteTreeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree [dir]",
		Short: "Store a directory snapshot as tree objects and print the root tree hash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}

			dir := ""
			if len(args) > 0 {
				dir = opts.resolvePath(args[0])
			}
			h, err := r.WriteTree(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
