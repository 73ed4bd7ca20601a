package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/odvcencio/tinygit/pkg/repo"
)

func newHashObjectCmd(opts *globalOptions) *cobra.Command {
	var write bool
	var stdin bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] (--stdin | <file>...)",
		Short: "Compute the blob hash of file contents, optionally storing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdin == (len(args) > 0) {
				return fmt.Errorf("hash-object: pass either --stdin or one or more files")
			}

			// Hashing alone does not need a repository.
			var r *repo.Repo
			if write {
				var err error
				r, err = opts.openRepo(cmd)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if stdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("hash-object: read stdin: %w", err)
				}
				h, err := hashBytes(r, data)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, h)
				return nil
			}

			for _, arg := range args {
				path := opts.resolvePath(arg)
				var (
					h   object.Hash
					err error
				)
				if r != nil {
					h, err = r.HashObject(path, true)
				} else {
					h, err = hashFile(path)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out, h)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the blob into the object store")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read the content from standard input")
	return cmd
}

func hashBytes(r *repo.Repo, data []byte) (object.Hash, error) {
	if r == nil {
		return object.HashObject(object.TypeBlob, data), nil
	}
	return r.HashObjectBytes(data, true)
}

func hashFile(path string) (object.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("hash-object: %w: %w", object.ErrIO, err)
	}
	return object.HashObject(object.TypeBlob, data), nil
}
