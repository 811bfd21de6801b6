package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// rootOptions holds global flags for all commands.
type rootOptions struct {
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "rqdemo",
		Short:         "Render queue demo",
		Long:          "Encodes drawing commands from concurrent producers into one render queue and executes them on a single flusher.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log queue activity to stderr")

	cmd.AddCommand(newRenderCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("rqdemo %s\n", version)
		},
	}
}

// newLogger returns the logger installed for a run: debug output to stderr
// with --verbose, warnings only otherwise.
func (o *rootOptions) newLogger(cmd *cobra.Command, runID string) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run", runID)
}
