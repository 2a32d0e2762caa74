package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

// options holds the persistent flags shared by every subcommand.
type options struct {
	debug   bool
	dir     string
	format  string
	output  string
	timeout time.Duration
	noColor bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "preflight - pre-deployment diagnostics for web applications",
		Long: `preflight runs a profile of independent diagnostic checks against an
application directory and reports a single verdict.

Required checks decide the exit status; advisory checks only warn.
Exit status is 0 when every required check passed, 1 when any failed and
2 on configuration or runtime errors.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.StringVarP(&opts.dir, "dir", "C", "", "Application directory (default: current directory)")
	flags.StringVar(&opts.format, "format", "", "Report format: text, json, junit (default: text)")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Per-check timeout (default: 5m0s)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newCompatCommand(opts))
	cmd.AddCommand(newDeployCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInitCommand(opts))

	return cmd
}

func execute(ctx context.Context) error {
	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
