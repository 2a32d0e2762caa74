package main

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stocklift/preflight/internal/environ"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns everything
// written to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{
		"PREFLIGHT_APP_DIR", "PREFLIGHT_APP_MODULE", "PREFLIGHT_INTERPRETER",
		"PREFLIGHT_TIMEOUT", "PREFLIGHT_FORMAT",
	} {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v)
			require.NoError(t, os.Unsetenv(k))
		}
	}

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeTree creates files (names without a trailing slash) and directories
// (names ending in "/") under root.
func writeTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), fs.FileMode(0o644)))
	}
}

func writeProfile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// deployTree is the layout the built-in deploy profile requires.
var deployTree = []string{
	"app.py", "requirements.txt", "build.sh", "render.yaml",
	"static/", "templates/", "models/", "uploads/", "processed/", "exports/",
}

// stubEnv makes runs probe env instead of the host.
func stubEnv(t *testing.T, env *environ.Static) {
	t.Helper()
	orig := newEnv
	newEnv = func(dir string, _ ...string) (environ.Env, error) {
		env.Root = dir
		return env, nil
	}
	t.Cleanup(func() { newEnv = orig })
}

// compatFS is the application tree the built-in compatibility profile
// expects, with or without the generated model artifacts.
func compatFS(withModels bool) fstest.MapFS {
	files := fstest.MapFS{}
	for _, d := range []string{
		"static", "templates", "models", "uploads", "processed", "exports",
		"static/backgrounds", "static/css", "static/js", "static/img",
	} {
		files[d] = &fstest.MapFile{Mode: fs.ModeDir}
	}
	if withModels {
		for _, f := range []string{
			"models/bundle_model.pkl", "models/discount_model.pkl",
			"models/xgboost_health_model.pkl", "u2net/u2netp.pth",
		} {
			files[f] = &fstest.MapFile{}
		}
	}
	return files
}
