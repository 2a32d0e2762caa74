package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stocklift/preflight/internal/probes"
	"github.com/stocklift/preflight/internal/profile"
	"github.com/stocklift/preflight/internal/validation"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <profile.yaml>",
		Short: "Validate a profile file without running it",
		Long: `Validate a profile against the profile schema, then build every check
from its parameters. Nothing is executed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := args[0]

			errs, err := validation.ValidateProfileFile(path)
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(out, "  ✗ %s\n", e) //nolint:errcheck
				}
				return fmt.Errorf("%s: %d schema %s", path, len(errs), pluralize(len(errs), "error"))
			}

			p, err := profile.Load(path)
			if err != nil {
				return err
			}
			reg, err := p.Registry(probes.Defaults{})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✓ %s: profile %q is valid (%d %s)\n", //nolint:errcheck
				path, p.Name, reg.Len(), pluralize(reg.Len(), "check"))
			return nil
		},
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
