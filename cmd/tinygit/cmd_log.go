package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/odvcencio/tinygit/pkg/signing"
)

func newLogCmd(opts *globalOptions) *cobra.Command {
	var oneline bool
	var limit int
	var showSignature bool

	cmd := &cobra.Command{
		Use:   "log <commit>",
		Short: "Show first-parent commit history starting at a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseHashArg(args[0])
			if err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("log: --limit must be positive, got %d", limit)
			}
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}

			commits, err := r.Log(start, limit)
			if err != nil {
				return err
			}

			// Each commit after the first is the first parent of the one
			// before it.
			hashes := make([]object.Hash, len(commits))
			hashes[0] = start
			for i := 1; i < len(commits); i++ {
				hashes[i] = commits[i-1].Parents[0]
			}

			out := cmd.OutOrStdout()
			for i, c := range commits {
				h := hashes[i]
				if oneline {
					fmt.Fprintf(out, "%s %s\n", h.String()[:8], subject(c.Message))
					continue
				}
				fmt.Fprintf(out, "commit %s\n", h)
				if showSignature && c.Signature != "" {
					printSignatureStatus(out, c)
				}
				if len(c.Parents) > 1 {
					short := make([]string, len(c.Parents))
					for j, p := range c.Parents {
						short[j] = p.String()[:8]
					}
					fmt.Fprintf(out, "Merge: %s\n", strings.Join(short, " "))
				}
				fmt.Fprintf(out, "Author: %s\n", c.Author.Person)
				fmt.Fprintf(out, "Date:   %s\n", formatIdentTime(c.Author))
				fmt.Fprintln(out)
				for _, line := range strings.Split(c.Message, "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show")
	cmd.Flags().BoolVar(&showSignature, "show-signature", false, "check SSH signatures on signed commits")
	return cmd
}

func subject(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return line
}

// formatIdentTime renders an identity timestamp in its recorded zone.
func formatIdentTime(id object.Ident) string {
	t := time.Unix(id.When, 0).UTC()
	if zone, err := time.Parse("-0700", id.TZ); err == nil {
		_, offset := zone.Zone()
		t = t.In(time.FixedZone("", offset))
	}
	return t.Format("Mon Jan 2 15:04:05 2006 -0700")
}

func printSignatureStatus(w io.Writer, c *object.CommitObj) {
	pub, err := signing.VerifySSH(c.Signature, object.CommitSigningPayload(c))
	if err != nil {
		fmt.Fprintf(w, "Bad signature: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Good %q signature with %s key %s\n", signing.Namespace, pub.Type(), ssh.FingerprintSHA256(pub))
}
