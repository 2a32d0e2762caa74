package environ

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/joho/godotenv"
)

// OS is the Env backed by the running process and the local filesystem.
type OS struct {
	dir     string
	dotenv  map[string]string
	environ func(string) (string, bool)
}

var _ Env = (*OS)(nil)

// NewOS returns an Env rooted at dir. Variables from dotenvFiles (resolved
// against dir) are visible through LookupEnv but never override a variable
// already present in the process environment. Dotenv files that do not exist
// are ignored.
func NewOS(dir string, dotenvFiles ...string) (*OS, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving app directory %q: %w", dir, err)
	}

	e := &OS{dir: absDir, dotenv: map[string]string{}, environ: os.LookupEnv}

	for _, name := range dotenvFiles {
		p := name
		if !filepath.IsAbs(p) {
			p = filepath.Join(absDir, p)
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			slog.Debug("dotenv file not found, skipping", "path", p)
			continue
		}
		vars, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("reading dotenv file %q: %w", p, err)
		}
		for k, v := range vars {
			if _, seen := e.dotenv[k]; !seen {
				e.dotenv[k] = v
			}
		}
		slog.Debug("loaded dotenv file", "path", p, "vars", len(vars))
	}

	return e, nil
}

func (e *OS) Dir() string { return e.dir }

func (e *OS) LookupEnv(key string) (string, bool) {
	if v, ok := e.environ(key); ok {
		return v, true
	}
	v, ok := e.dotenv[key]
	return v, ok
}

func (e *OS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(e.resolve(path))
}

func (e *OS) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "name", name, "args", args, "dir", e.dir)
	err := cmd.Run()

	result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("running %s: %w", name, ctxErr)
		}
		return result, fmt.Errorf("running %s: %w", name, err)
	}
	return result, nil
}

func (e *OS) AvailableMemory() (uint64, error) {
	return availableMemory()
}

func (e *OS) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.dir, path)
}
