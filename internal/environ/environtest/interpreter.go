package environtest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stocklift/preflight/internal/environ"
)

// Interpreter fakes a Python interpreter for environ.Static.RunFunc.
// Single-module "-c import <module>" snippets fail for modules in Broken;
// every other snippet exits 0 and prints Output.
type Interpreter struct {
	Version string
	Broken  []string
	Output  string
}

// Run answers one command line.
func (p Interpreter) Run(name string, args ...string) (environ.CommandResult, error) {
	switch {
	case len(args) == 1 && args[0] == "--version":
		return environ.CommandResult{Stdout: "Python " + p.Version + "\n"}, nil
	case len(args) == 2 && args[0] == "-c":
		if mod, ok := strings.CutPrefix(args[1], "import "); ok && !strings.ContainsAny(mod, " ,\n") {
			if slices.Contains(p.Broken, mod) {
				return environ.CommandResult{
					ExitCode: 1,
					Stderr:   fmt.Sprintf("Traceback (most recent call last):\nModuleNotFoundError: No module named '%s'\n", mod),
				}, nil
			}
			return environ.CommandResult{}, nil
		}
		return environ.CommandResult{Stdout: p.Output}, nil
	}
	return environ.CommandResult{}, fmt.Errorf("exec: %q: unexpected arguments %q", name, args)
}
