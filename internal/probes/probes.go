// Package probes builds diag probes from the declarative check kinds a
// profile can use. Each kind decodes its own parameter map.
package probes

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stocklift/preflight/internal/diag"
)

// Kind names a check type a profile can declare.
type Kind string

const (
	// KindRuntimeVersion compares the interpreter version with a constraint.
	KindRuntimeVersion Kind = "runtime_version"
	// KindImports attempts to import each listed module.
	KindImports Kind = "imports"
	// KindScript runs an interpreter snippet, e.g. a framework smoke test.
	KindScript Kind = "script"
	// KindAppImport imports the hosted application object itself.
	KindAppImport Kind = "app_import"
	// KindPaths does existence checks on files and directories.
	KindPaths Kind = "paths"
	// KindEnvVars requires each listed environment variable to be non-empty.
	KindEnvVars Kind = "env_vars"
	// KindPlatform detects the hosting platform and its available memory.
	KindPlatform Kind = "platform"
)

// DefaultInterpreter is used when neither the check nor the configuration
// names one.
const DefaultInterpreter = "python3"

// Kinds lists every supported kind, sorted.
func Kinds() []Kind {
	kinds := []Kind{KindRuntimeVersion, KindImports, KindScript, KindAppImport, KindPaths, KindEnvVars, KindPlatform}
	slices.Sort(kinds)
	return kinds
}

// Defaults fills parameters a check leaves out.
type Defaults struct {
	Interpreter string
	// AppModule and AppAttribute locate the hosted application object.
	AppModule    string
	AppAttribute string
}

func (d Defaults) interpreter(v string) string {
	switch {
	case v != "":
		return v
	case d.Interpreter != "":
		return d.Interpreter
	default:
		return DefaultInterpreter
	}
}

// Create builds the probe for kind from its raw parameters.
func Create(kind Kind, params map[string]any, defaults Defaults) (diag.Probe, error) {
	switch kind {
	case KindRuntimeVersion:
		var v runtimeVersionParams
		if err := decode(params, &v); err != nil {
			return nil, err
		}
		return newRuntimeVersion(v, defaults)
	case KindImports:
		var v importsParams
		if err := decode(params, &v); err != nil {
			return nil, err
		}
		return newImports(v, defaults)
	case KindScript:
		var v scriptParams
		if err := decode(params, &v); err != nil {
			return nil, err
		}
		return newScript(v, defaults)
	case KindAppImport:
		var v appImportParams
		if err := decode(params, &v); err != nil {
			return nil, err
		}
		return newAppImport(v, defaults)
	case KindPaths:
		var v pathsParams
		if err := decode(params, &v); err != nil {
			return nil, err
		}
		return newPaths(v)
	case KindEnvVars:
		var v envVarsParams
		if err := decode(params, &v); err != nil {
			return nil, err
		}
		return newEnvVars(v)
	case KindPlatform:
		var v platformParams
		if err := decode(params, &v); err != nil {
			return nil, err
		}
		return newPlatform(v)
	default:
		return nil, fmt.Errorf("'%s' is not a valid check kind", kind)
	}
}

// decode maps params onto out, rejecting unknown keys so typos in a
// profile surface as configuration errors.
func decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		DecodeHook:  stringToNamedHook,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

var (
	moduleSpecType = reflect.TypeOf(moduleSpec{})
	envVarSpecType = reflect.TypeOf(envVarSpec{})
)

// stringToNamedHook lets list entries be written as a bare name instead of a
// mapping, e.g. `modules: [flask, numpy]`.
func stringToNamedHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to {
	case moduleSpecType:
		return moduleSpec{Module: data.(string)}, nil
	case envVarSpecType:
		return envVarSpec{Name: data.(string)}, nil
	}
	return data, nil
}

var dottedIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func validModule(name string) error {
	if !dottedIdentifier.MatchString(name) {
		return fmt.Errorf("%q is not a valid module name", name)
	}
	return nil
}

// lastLine returns the last non-blank line of s, which for a Python
// traceback is the exception itself.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
