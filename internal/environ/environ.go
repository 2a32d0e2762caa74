// Package environ provides the read-only view of the host that checks probe.
// Probes never read os.Getenv or stat the filesystem directly; they receive
// an Env so a run can be replayed against a fabricated environment in tests.
package environ

import (
	"context"
	"errors"
	"io/fs"
)

//go:generate go tool mockgen -source=environ.go -destination=environtest/mock_env.go -package=environtest

// ErrUnsupported is returned by probes of host facts that the current
// platform cannot report (for example available memory outside Linux).
var ErrUnsupported = errors.New("not supported on this platform")

// CommandResult holds the outcome of a command that started successfully.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status zero.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Env is the environment a check probes.
type Env interface {
	// Dir is the application directory. Relative paths handed to Stat and
	// commands started by Run resolve against it.
	Dir() string

	// LookupEnv returns the value of an environment variable.
	LookupEnv(key string) (string, bool)

	// Stat describes the file at path.
	Stat(path string) (fs.FileInfo, error)

	// Run executes name with args in Dir. A non-nil error means the command
	// could not be started or was interrupted; a command that ran and exited
	// non-zero is reported through CommandResult.ExitCode.
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)

	// AvailableMemory returns the memory available to new processes, in bytes.
	AvailableMemory() (uint64, error)
}
