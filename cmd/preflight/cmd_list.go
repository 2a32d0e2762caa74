package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/stocklift/preflight/internal/profile"
	"github.com/stocklift/preflight/internal/reporting"
)

const (
	colName     = 26
	colKind     = 16
	colSeverity = 10
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [profile | profile.yaml]",
		Short: "List profiles, or the checks of one profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return listProfiles(out)
			}
			p, err := profile.Resolve(args[0])
			if err != nil {
				return err
			}
			listChecks(out, p)
			return nil
		},
	}
}

func listProfiles(w io.Writer) error {
	fmt.Fprintln(w, "Built-in profiles:") //nolint:errcheck
	for _, name := range profile.Names() {
		p, err := profile.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s %s\n", reporting.PadRight(name, colName), p.Description) //nolint:errcheck
	}
	return nil
}

func listChecks(w io.Writer, p *profile.Profile) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.Source) //nolint:errcheck
	if p.Description != "" {
		fmt.Fprintf(w, "%s\n", p.Description) //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck

	fmt.Fprintf(w, "  %s  %s  %s  %s\n", //nolint:errcheck
		reporting.PadRight("CHECK", colName),
		reporting.PadRight("KIND", colKind),
		reporting.PadRight("SEVERITY", colSeverity),
		"DESCRIPTION")
	for _, c := range p.Checks {
		sev := string(c.Severity)
		if sev == "" {
			sev = "required"
		}
		fmt.Fprintf(w, "  %s  %s  %s  %s\n", //nolint:errcheck
			reporting.PadRight(c.Name, colName),
			reporting.PadRight(string(c.Kind), colKind),
			reporting.PadRight(sev, colSeverity),
			c.Description)
	}
}
