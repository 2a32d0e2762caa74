package environ

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"testing/fstest"
)

// Static is a fabricated Env. Files holds the filesystem with paths written
// relative to the app directory; absolute paths are looked up with the
// leading slash removed. Commands maps "name arg1 arg2" to its result.
// A command missing from the map goes to RunFunc, or fails to start when
// RunFunc is nil.
type Static struct {
	Root     string
	Vars     map[string]string
	Files    fstest.MapFS
	Commands map[string]CommandResult
	RunFunc  func(name string, args ...string) (CommandResult, error)
	Memory   uint64
	MemErr   error
}

var _ Env = (*Static)(nil)

func (s *Static) Dir() string {
	if s.Root == "" {
		return "/app"
	}
	return s.Root
}

func (s *Static) LookupEnv(key string) (string, bool) {
	v, ok := s.Vars[key]
	return v, ok
}

func (s *Static) Stat(name string) (fs.FileInfo, error) {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if clean == "" {
		clean = "."
	}
	if s.Files == nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return s.Files.Stat(clean)
}

func (s *Static) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	if err := ctx.Err(); err != nil {
		return CommandResult{}, err
	}
	key := strings.Join(append([]string{name}, args...), " ")
	result, ok := s.Commands[key]
	if !ok {
		if s.RunFunc != nil {
			return s.RunFunc(name, args...)
		}
		return CommandResult{}, fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return result, nil
}

func (s *Static) AvailableMemory() (uint64, error) {
	if s.MemErr != nil {
		return 0, s.MemErr
	}
	return s.Memory, nil
}
