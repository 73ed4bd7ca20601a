package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/tinygit/pkg/object"
)

func newCatFileCmd(opts *globalOptions) *cobra.Command {
	var showType, showSize, pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -s | -p) <object>",
		Short: "Show the kind, size or content of one object",
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

			objType, payload, err := r.CatObject(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, objType)
			case showSize:
				fmt.Fprintln(out, len(payload))
			default:
				return prettyPrint(out, objType, payload)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object kind")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "show the payload size in bytes")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.MarkFlagsMutuallyExclusive("type", "size", "pretty")
	cmd.MarkFlagsOneRequired("type", "size", "pretty")
	return cmd
}

// prettyPrint writes blobs and commits verbatim and trees in ls-tree form.
func prettyPrint(w io.Writer, objType object.ObjectType, payload []byte) error {
	if objType != object.TypeTree {
		_, err := w.Write(payload)
		return err
	}
	tr, err := object.UnmarshalTree(payload)
	if err != nil {
		return err
	}
	for _, e := range tr.Entries {
		printTreeLine(w, e.Mode, e.Hash, e.Name)
	}
	return nil
}

func printTreeLine(w io.Writer, mode object.TreeMode, h object.Hash, name string) {
	fmt.Fprintf(w, "%06o %s %s\t%s\n", uint32(mode), mode.ObjectType(), h, name)
}
