package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/odvcencio/tinygit/pkg/repo"
	"github.com/odvcencio/tinygit/pkg/signing"
)

func newCommitTreeCmd(opts *globalOptions) *cobra.Command {
	var (
		parents   []string
		message   string
		author    string
		committer string
		sign      bool
		noSign    bool
		signKey   string
	)

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p <parent>]... [-m <message>]",
		Short: "Create a commit object for a tree and print its hash",
		Long: "Create a commit object for a tree and print its hash. The message is\n" +
			"read from standard input when -m is not given. No ref is updated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := parseHashArg(args[0])
			if err != nil {
				return err
			}
			parentHashes := make([]object.Hash, 0, len(parents))
			for _, p := range parents {
				h, err := parseHashArg(p)
				if err != nil {
					return err
				}
				parentHashes = append(parentHashes, h)
			}

			if !cmd.Flags().Changed("message") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("commit-tree: read message: %w", err)
				}
				message = strings.TrimSuffix(string(data), "\n")
			}

			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}

			commitOpts := repo.CommitOptions{
				Tree:      tree,
				Parents:   parentHashes,
				Message:   message,
				Author:    author,
				Committer: committer,
			}

			// An explicit key or a configured one turns signing on.
			keyPath := strings.TrimSpace(signKey)
			if keyPath == "" {
				keyPath = strings.TrimSpace(r.Config.Signing.Key)
			}
			if !noSign && (sign || keyPath != "") {
				signer, resolved, err := signing.LoadSSHSigner(keyPath)
				if err != nil {
					return fmt.Errorf("commit-tree: %w", err)
				}
				opts.logger(cmd).Debug("signing commit", zap.String("key", resolved))
				commitOpts.Signer = signer
			}

			h, err := r.CommitTree(commitOpts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit hash (repeatable)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "author identity \"Name <email>\" (defaults to user.name/user.email)")
	cmd.Flags().StringVar(&committer, "committer", "", "committer identity (defaults to the author)")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().BoolVar(&noSign, "no-sign", false, "do not sign, even when signing.key is configured")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "SSH private key used for signing (default ~/.ssh/id_ed25519, id_ecdsa, id_rsa)")
	cmd.MarkFlagsMutuallyExclusive("sign", "no-sign")
	return cmd
}
