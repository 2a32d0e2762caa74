package probes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/environ"
)

type pathType string

const (
	pathFile pathType = "file"
	pathDir  pathType = "dir"
	pathAny  pathType = "any"
)

type pathsParams struct {
	Type  string   `mapstructure:"type"`
	Paths []string `mapstructure:"paths"`
	// MissingHint is appended to the note for each missing path, e.g.
	// "will be created at runtime" for lazily generated artifacts.
	MissingHint string `mapstructure:"missing_hint"`
	// WarnOnly reports problems as warnings and still passes.
	WarnOnly bool `mapstructure:"warn_only"`
}

func newPaths(p pathsParams) (diag.Probe, error) {
	want := pathType(p.Type)
	switch want {
	case "":
		want = pathAny
	case pathFile, pathDir, pathAny:
	default:
		return nil, fmt.Errorf("paths: unknown type %q (want file, dir or any)", p.Type)
	}
	if len(p.Paths) == 0 {
		return nil, errors.New("paths: at least one path is required")
	}

	return func(_ context.Context, env environ.Env, notes *diag.Notes) (bool, error) {
		problem := notes.Fail
		if p.WarnOnly {
			problem = notes.Warn
		}
		missing := 0
		for _, path := range p.Paths {
			info, err := env.Stat(path)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				missing++
				if p.MissingHint != "" {
					problem("%s (missing - %s)", path, p.MissingHint)
				} else {
					problem("%s (missing)", path)
				}
			case err != nil:
				return false, err
			case want == pathDir && !info.IsDir():
				missing++
				problem("%s (not a directory)", path)
			case want == pathFile && info.IsDir():
				missing++
				problem("%s (is a directory)", path)
			default:
				notes.OK("%s", path)
			}
		}
		return missing == 0 || p.WarnOnly, nil
	}, nil
}
