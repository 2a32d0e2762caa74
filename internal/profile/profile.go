// Package profile loads diagnostic profiles, the declarative check lists that
// the runner executes. Two profiles are built in; others can be read from
// YAML files.
package profile

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/probes"
	"github.com/stocklift/preflight/internal/validation"
	"gopkg.in/yaml.v3"
)

// Names of the built-in profiles.
const (
	Compatibility = "compatibility"
	Deploy        = "deploy"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrNotFound is returned by Resolve for a name that is neither a built-in
// profile nor a readable file.
var ErrNotFound = errors.New("profile not found")

// Profile is one named, ordered list of checks.
type Profile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Checks      []CheckDef  `yaml:"checks"`
	Remediation Remediation `yaml:"remediation,omitempty"`

	// Source is the file the profile was read from, or "builtin".
	Source string `yaml:"-"`
}

// CheckDef declares one check.
type CheckDef struct {
	Name        string         `yaml:"name"`
	Kind        probes.Kind    `yaml:"kind"`
	Severity    diag.Severity  `yaml:"severity,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Params      map[string]any `yaml:"params,omitempty"`
}

// Remediation is printed after a run: Failure when a required check failed,
// NextSteps otherwise.
type Remediation struct {
	Failure   string   `yaml:"failure,omitempty"`
	NextSteps []string `yaml:"next_steps,omitempty"`
}

// SchemaError lists every schema violation found in a profile document.
type SchemaError struct {
	Source string
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid profile:\n  %s", e.Source, strings.Join(e.Errors, "\n  "))
}

// Parse validates data against the profile schema and decodes it.
func Parse(data []byte, source string) (*Profile, error) {
	if errs := validation.ValidateProfileBytes(data); len(errs) > 0 {
		return nil, &SchemaError{Source: source, Errors: errs}
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	p.Source = source
	return &p, nil
}

// Load reads and parses the profile file at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return Parse(data, path)
}

// Builtin returns the built-in profile called name.
func Builtin(name string) (*Profile, error) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: no built-in profile %q", ErrNotFound, name)
	}
	p, err := Parse(data, "builtin")
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Names lists the built-in profiles, sorted.
func Names() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Resolve returns the built-in profile called ref, or loads ref as a file
// path when it names an existing file or ends in .yaml/.yml.
func Resolve(ref string) (*Profile, error) {
	if looksLikeFile(ref) {
		return Load(ref)
	}
	if slices.Contains(Names(), ref) {
		return Builtin(ref)
	}
	return nil, fmt.Errorf("%w: %q (built-in profiles: %s)", ErrNotFound, ref, strings.Join(Names(), ", "))
}

func looksLikeFile(ref string) bool {
	if strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") {
		return true
	}
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir()
}

// Registry builds the profile's checks into a diag.Registry. Any bad check
// definition is reported as a *diag.ConfigError before anything runs.
func (p *Profile) Registry(defaults probes.Defaults) (*diag.Registry, error) {
	checks := make([]diag.Check, 0, len(p.Checks))
	for _, def := range p.Checks {
		probe, err := probes.Create(def.Kind, def.Params, defaults)
		if err != nil {
			return nil, &diag.ConfigError{Profile: p.Name, Check: def.Name, Err: err}
		}
		checks = append(checks, diag.Check{
			Name:        def.Name,
			Severity:    def.Severity,
			Description: def.Description,
			Kind:        string(def.Kind),
			Probe:       probe,
		})
	}
	return diag.NewRegistry(p.Name, checks...)
}
