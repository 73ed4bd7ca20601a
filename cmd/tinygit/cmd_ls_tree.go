package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLsTreeCmd(opts *globalOptions) *cobra.Command {
	var recursive bool
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] [--name-only] <tree>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHashArg(args[0])
			if err != nil {
				return err
			}
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if recursive {
				files, err := r.FlattenTree(h)
				if err != nil {
					return err
				}
				for _, f := range files {
					if nameOnly {
						fmt.Fprintln(out, f.Path)
						continue
					}
					printTreeLine(out, f.Mode, f.Hash, f.Path)
				}
				return nil
			}

			entries, err := r.LsTree(h)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if nameOnly {
					fmt.Fprintln(out, e.Name)
					continue
				}
				printTreeLine(out, e.Mode, e.Hash, e.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees, listing files with full paths")
	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "list only names")
	return cmd
}
