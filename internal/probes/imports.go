package probes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/environ"
)

type moduleSpec struct {
	Module  string `mapstructure:"module"`
	Display string `mapstructure:"display"`
}

func (m moduleSpec) label() string {
	if m.Display != "" {
		return m.Display
	}
	return m.Module
}

type importsParams struct {
	Interpreter string       `mapstructure:"interpreter"`
	Modules     []moduleSpec `mapstructure:"modules"`
}

func newImports(p importsParams, d Defaults) (diag.Probe, error) {
	if len(p.Modules) == 0 {
		return nil, errors.New("imports: at least one module is required")
	}
	for _, m := range p.Modules {
		if err := validModule(m.Module); err != nil {
			return nil, err
		}
	}
	interp := d.interpreter(p.Interpreter)

	return func(ctx context.Context, env environ.Env, notes *diag.Notes) (bool, error) {
		var failed []string
		for _, m := range p.Modules {
			res, err := env.Run(ctx, interp, "-c", "import "+m.Module)
			if err != nil {
				// The interpreter itself is unusable; no later import can succeed.
				return false, err
			}
			if !res.Success() {
				notes.Fail("%s: %s", m.label(), lastLine(res.Stderr))
				failed = append(failed, m.label())
				continue
			}
			notes.OK("%s", m.label())
		}
		if len(failed) > 0 {
			notes.Info("%d of %d packages failed to import: %s", len(failed), len(p.Modules), strings.Join(failed, ", "))
		}
		return len(failed) == 0, nil
	}, nil
}

type scriptParams struct {
	Interpreter string `mapstructure:"interpreter"`
	Code        string `mapstructure:"code"`
	// ExpectOutput, when set, must appear in stdout.
	ExpectOutput string `mapstructure:"expect_output"`
}

func newScript(p scriptParams, d Defaults) (diag.Probe, error) {
	if strings.TrimSpace(p.Code) == "" {
		return nil, errors.New("script: code is required")
	}
	interp := d.interpreter(p.Interpreter)

	return func(ctx context.Context, env environ.Env, notes *diag.Notes) (bool, error) {
		res, err := env.Run(ctx, interp, "-c", p.Code)
		if err != nil {
			return false, err
		}
		if !res.Success() {
			return false, errors.New(lastLine(res.Stderr))
		}
		for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				notes.Info("%s", line)
			}
		}
		if p.ExpectOutput != "" && !strings.Contains(res.Stdout, p.ExpectOutput) {
			notes.Fail("expected output to contain %q", p.ExpectOutput)
			return false, nil
		}
		return true, nil
	}, nil
}

type appImportParams struct {
	Interpreter string `mapstructure:"interpreter"`
	Module      string `mapstructure:"module"`
	Attribute   string `mapstructure:"attribute"`
	// ExpectAttrs are attributes the application object should carry.
	// Missing ones are reported as warnings only.
	ExpectAttrs []string `mapstructure:"expect_attrs"`
}

const (
	appAttrPresent = "has:"
	appAttrMissing = "missing:"
)

func newAppImport(p appImportParams, d Defaults) (diag.Probe, error) {
	module := firstNonEmpty(p.Module, d.AppModule, "app")
	attr := firstNonEmpty(p.Attribute, d.AppAttribute, "app")
	if err := validModule(module); err != nil {
		return nil, err
	}
	if err := validModule(attr); err != nil || strings.Contains(attr, ".") {
		return nil, fmt.Errorf("%q is not a valid attribute name", attr)
	}
	for _, a := range p.ExpectAttrs {
		if err := validModule(a); err != nil || strings.Contains(a, ".") {
			return nil, fmt.Errorf("%q is not a valid attribute name", a)
		}
	}
	interp := d.interpreter(p.Interpreter)
	code := appImportScript(module, attr, p.ExpectAttrs)

	return func(ctx context.Context, env environ.Env, notes *diag.Notes) (bool, error) {
		res, err := env.Run(ctx, interp, "-c", code)
		if err != nil {
			return false, err
		}
		if !res.Success() {
			return false, fmt.Errorf("importing %s.%s: %s", module, attr, lastLine(res.Stderr))
		}
		notes.OK("%s.%s imported successfully", module, attr)
		for _, line := range strings.Split(res.Stdout, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, appAttrPresent):
				notes.OK("%s available", strings.TrimPrefix(line, appAttrPresent))
			case strings.HasPrefix(line, appAttrMissing):
				notes.Warn("%s not found", strings.TrimPrefix(line, appAttrMissing))
			}
		}
		return true, nil
	}, nil
}

// appImportScript imports module from the working directory and reports on
// each expected attribute of the application object.
func appImportScript(module, attr string, expect []string) string {
	var b strings.Builder
	b.WriteString("import importlib, sys\n")
	b.WriteString("sys.path.insert(0, '.')\n")
	fmt.Fprintf(&b, "obj = getattr(importlib.import_module(%s), %s)\n", strconv.Quote(module), strconv.Quote(attr))
	for _, a := range expect {
		fmt.Fprintf(&b, "print((%q if hasattr(obj, %s) else %q) + %s)\n",
			appAttrPresent, strconv.Quote(a), appAttrMissing, strconv.Quote(a))
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
