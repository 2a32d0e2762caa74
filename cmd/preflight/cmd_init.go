package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stocklift/preflight/internal/projectconfig"
	"github.com/stocklift/preflight/internal/wizard"
	"golang.org/x/term"
)

type initOptions struct {
	force       bool
	yes         bool
	module      string
	attribute   string
	interpreter string
}

func newInitCommand(opts *options) *cobra.Command {
	initOpts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .preflight.yaml",
		Long: `Write a starter .preflight.yaml in the application directory.

On a terminal an interactive form is shown; otherwise (or with --yes) the
defaults and any flags given are written directly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initCommandE(cmd, opts, initOpts)
		},
	}

	cmd.Flags().BoolVar(&initOpts.force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVarP(&initOpts.yes, "yes", "y", false, "Skip the interactive form")
	cmd.Flags().StringVar(&initOpts.module, "module", "", "Application module (default: app)")
	cmd.Flags().StringVar(&initOpts.attribute, "attribute", "", "Application object name (default: app)")
	cmd.Flags().StringVar(&initOpts.interpreter, "interpreter", "", "Interpreter command (default: python3)")

	return cmd
}

func initCommandE(cmd *cobra.Command, opts *options, initOpts *initOptions) error {
	dir := opts.dir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, projectconfig.FileName)

	if _, err := os.Stat(path); err == nil && !initOpts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	answers := wizard.DefaultAnswers()
	if initOpts.module != "" {
		answers.Module = initOpts.module
	}
	if initOpts.attribute != "" {
		answers.Attribute = initOpts.attribute
	}
	if initOpts.interpreter != "" {
		answers.Interpreter = initOpts.interpreter
	}
	if cmd.Flags().Changed("format") {
		answers.Format = opts.format
	}
	if cmd.Flags().Changed("timeout") {
		answers.Timeout = opts.timeout
	}

	// Check TTY from the command's input stream, not os.Stdin directly.
	isTTY := false
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	if isTTY && !initOpts.yes {
		edited, err := wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout(), answers)
		if err != nil {
			return err
		}
		answers = edited
	}

	data, err := wizard.Render(answers)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path) //nolint:errcheck
	return nil
}
