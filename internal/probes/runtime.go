package probes

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/environ"
)

type runtimeVersionParams struct {
	Interpreter string `mapstructure:"interpreter"`
	// Constraint is a semver range such as "~3.11" or ">= 3.10, < 3.13".
	Constraint  string `mapstructure:"constraint"`
	VersionFlag string `mapstructure:"version_flag"`
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

func newRuntimeVersion(p runtimeVersionParams, d Defaults) (diag.Probe, error) {
	interp := d.interpreter(p.Interpreter)
	flag := p.VersionFlag
	if flag == "" {
		flag = "--version"
	}

	var constraint *semver.Constraints
	if p.Constraint != "" {
		c, err := semver.NewConstraint(p.Constraint)
		if err != nil {
			return nil, fmt.Errorf("invalid constraint %q: %w", p.Constraint, err)
		}
		constraint = c
	}

	return func(ctx context.Context, env environ.Env, notes *diag.Notes) (bool, error) {
		res, err := env.Run(ctx, interp, flag)
		if err != nil {
			return false, err
		}
		if !res.Success() {
			return false, fmt.Errorf("%s %s exited with status %d: %s", interp, flag, res.ExitCode, lastLine(res.Stderr))
		}

		// Older interpreters print the version banner on stderr.
		banner := strings.TrimSpace(res.Stdout)
		if banner == "" {
			banner = strings.TrimSpace(res.Stderr)
		}
		raw := versionPattern.FindString(banner)
		if raw == "" {
			return false, fmt.Errorf("no version number in %q", banner)
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return false, fmt.Errorf("parsing version %q: %w", raw, err)
		}
		notes.Info("%s", banner)

		if constraint == nil {
			notes.OK("%s %s detected", interp, v)
			return true, nil
		}
		if ok, reasons := constraint.Validate(v); !ok {
			for _, r := range reasons {
				notes.Warn("%s %d.%d may have compatibility issues: %v", interp, v.Major(), v.Minor(), r)
			}
			return false, nil
		}
		notes.OK("%s %d.%d satisfies %s", interp, v.Major(), v.Minor(), constraint)
		return true, nil
	}, nil
}
