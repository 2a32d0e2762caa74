package environ

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS_DotenvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PREFLIGHT_TEST_SHARED=from-file\nPREFLIGHT_TEST_FILE_ONLY=file\n"), 0o644))
	t.Setenv("PREFLIGHT_TEST_SHARED", "from-process")

	e, err := NewOS(dir, ".env", "missing.env")
	require.NoError(t, err)

	v, ok := e.LookupEnv("PREFLIGHT_TEST_SHARED")
	assert.True(t, ok)
	assert.Equal(t, "from-process", v)

	v, ok = e.LookupEnv("PREFLIGHT_TEST_FILE_ONLY")
	assert.True(t, ok)
	assert.Equal(t, "file", v)

	_, ok = e.LookupEnv("PREFLIGHT_TEST_NOT_SET_ANYWHERE")
	assert.False(t, ok)
}

func TestNewOS_MalformedDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD!KEY=value\n"), 0o644))

	_, err := NewOS(dir, ".env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading dotenv file")
}

func TestOS_StatResolvesAgainstDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "css"), 0o755))

	e, err := NewOS(dir)
	require.NoError(t, err)

	info, err := e.Stat("static/css")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = e.Stat("templates")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOS_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
	e, err := NewOS(t.TempDir())
	require.NoError(t, err)

	result, err := e.Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.False(t, result.Success())
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)

	_, err = e.Run(context.Background(), "preflight-definitely-not-a-command")
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	s := &Static{
		Vars:  map[string]string{"PORT": "10000"},
		Files: fstest.MapFS{"app.py": {Data: []byte("app")}, "opt/render": {Mode: fs.ModeDir}},
		Commands: map[string]CommandResult{
			"python3 --version": {Stdout: "Python 3.11.4\n"},
		},
		Memory: 2 << 30,
	}

	assert.Equal(t, "/app", s.Dir())

	v, ok := s.LookupEnv("PORT")
	assert.True(t, ok)
	assert.Equal(t, "10000", v)

	_, err := s.Stat("app.py")
	assert.NoError(t, err)
	info, err := s.Stat("/opt/render")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = s.Stat("render.yaml")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	result, err := s.Run(context.Background(), "python3", "--version")
	require.NoError(t, err)
	assert.Equal(t, "Python 3.11.4\n", result.Stdout)

	_, err = s.Run(context.Background(), "node", "--version")
	assert.Error(t, err)

	mem, err := s.AvailableMemory()
	require.NoError(t, err)
	assert.Equal(t, uint64(2<<30), mem)
}

func TestStatic_RunFuncFallback(t *testing.T) {
	s := &Static{
		Commands: map[string]CommandResult{"python3 --version": {Stdout: "Python 3.11.4\n"}},
		RunFunc: func(name string, args ...string) (CommandResult, error) {
			return CommandResult{Stdout: name + " " + args[0]}, nil
		},
	}

	result, err := s.Run(context.Background(), "python3", "--version")
	require.NoError(t, err)
	assert.Equal(t, "Python 3.11.4\n", result.Stdout)

	result, err = s.Run(context.Background(), "python3", "-c")
	require.NoError(t, err)
	assert.Equal(t, "python3 -c", result.Stdout)
}
