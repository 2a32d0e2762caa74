package probes

import (
	"context"
	"errors"
	"strings"

	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/environ"
)

type envVarSpec struct {
	Name string `mapstructure:"name"`
	// Hint explains what degrades when the variable is unset.
	Hint string `mapstructure:"hint"`
}

type envVarsParams struct {
	Vars []envVarSpec `mapstructure:"vars"`
}

func newEnvVars(p envVarsParams) (diag.Probe, error) {
	if len(p.Vars) == 0 {
		return nil, errors.New("env_vars: at least one variable is required")
	}
	for _, v := range p.Vars {
		if strings.TrimSpace(v.Name) == "" {
			return nil, errors.New("env_vars: variable name is empty")
		}
	}

	return func(_ context.Context, env environ.Env, notes *diag.Notes) (bool, error) {
		unset := 0
		for _, v := range p.Vars {
			// Values are never echoed; they are frequently secrets.
			if val, ok := env.LookupEnv(v.Name); ok && val != "" {
				notes.OK("%s is set", v.Name)
				continue
			}
			unset++
			if v.Hint != "" {
				notes.Fail("%s not set (%s)", v.Name, v.Hint)
			} else {
				notes.Fail("%s not set", v.Name)
			}
		}
		return unset == 0, nil
	}, nil
}
