package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/odvcencio/tinygit/pkg/repo"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalOptions holds flags shared by every subcommand.
type globalOptions struct {
	dir     string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "tinygit",
		Short:         "Content-addressed object store with git-compatible blobs, trees and commits",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "run as if started in `path`")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug events to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newHashObjectCmd(opts))
	root.AddCommand(newCatFileCmd(opts))
	root.AddCommand(newLsTreeCmd(opts))
	root.AddCommand(newWriteTreeCmd(opts))
	root.AddCommand(newCommitTreeCmd(opts))
	root.AddCommand(newLogCmd(opts))
	root.AddCommand(newVerifyCmd(opts))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tinygit %s\n", version)
		},
	}
}

// logger returns a console logger on the command's stderr when --verbose is
// set, and a no-op logger otherwise.
func (o *globalOptions) logger(cmd *cobra.Command) *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(cmd.ErrOrStderr()),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

func (o *globalOptions) openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	return repo.Open(o.dir, repo.WithLogger(o.logger(cmd)))
}

// resolvePath interprets p relative to the -C directory.
func (o *globalOptions) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.dir, p)
}

func parseHashArg(arg string) (object.Hash, error) {
	h, err := object.ParseHash(arg)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("invalid object name %q: %w", arg, err)
	}
	return h, nil
}
