package diag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateCheck is wrapped by the ConfigError returned when two checks in
// one registry share a name.
var ErrDuplicateCheck = errors.New("duplicate check name")

// ConfigError reports a malformed registry. It is raised before any check
// runs and is never isolated like a probe failure.
type ConfigError struct {
	Profile string
	Check   string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Check == "" {
		return fmt.Sprintf("profile %q: %v", e.Profile, e.Err)
	}
	return fmt.Sprintf("profile %q: check %q: %v", e.Profile, e.Check, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Registry is the ordered, immutable set of checks for one profile.
type Registry struct {
	name   string
	checks []Check
}

// NewRegistry validates checks and returns them as a registry named after
// the profile. An empty severity defaults to required.
func NewRegistry(profile string, checks ...Check) (*Registry, error) {
	seen := make(map[string]struct{}, len(checks))
	owned := make([]Check, 0, len(checks))

	for i, c := range checks {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, &ConfigError{Profile: profile, Err: fmt.Errorf("check #%d has no name", i+1)}
		}
		if c.Probe == nil {
			return nil, &ConfigError{Profile: profile, Check: c.Name, Err: errors.New("no probe")}
		}
		if c.Severity == "" {
			c.Severity = SeverityRequired
		}
		if !c.Severity.Valid() {
			return nil, &ConfigError{Profile: profile, Check: c.Name, Err: fmt.Errorf("unknown severity %q", c.Severity)}
		}
		if _, dup := seen[c.Name]; dup {
			return nil, &ConfigError{Profile: profile, Check: c.Name, Err: ErrDuplicateCheck}
		}
		seen[c.Name] = struct{}{}
		owned = append(owned, c)
	}

	return &Registry{name: profile, checks: owned}, nil
}

// Name returns the profile name.
func (r *Registry) Name() string { return r.name }

// Len returns the number of checks.
func (r *Registry) Len() int { return len(r.checks) }

// Checks returns the checks in run order. The slice is a copy.
func (r *Registry) Checks() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}
