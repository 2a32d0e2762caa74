// Package diag is the diagnostic engine: an ordered registry of named
// checks, a runner that executes every check behind a failure-isolation
// boundary, and the summary that decides the run's verdict and exit code.
//
// A check's probe may return false, return an error, panic, or (with a
// runner timeout) hang; each of those yields exactly one failed
// [CheckResult] and the run moves on to the next check.
package diag

import (
	"context"
	"fmt"
	"sync"

	"github.com/stocklift/preflight/internal/environ"
)

// Severity decides whether a failing check affects the run's exit status.
type Severity string

const (
	// SeverityRequired checks fail the run when they fail.
	SeverityRequired Severity = "required"
	// SeverityAdvisory checks are reported but never fail the run.
	SeverityAdvisory Severity = "advisory"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SeverityRequired || s == SeverityAdvisory
}

// Probe performs one check against env. Human-readable detail goes to notes;
// only the returned bool and error decide the result.
type Probe func(ctx context.Context, env environ.Env, notes *Notes) (bool, error)

// Check is a named probe. Checks are built once per registry and never
// mutated.
type Check struct {
	Name        string
	Severity    Severity
	Description string
	Kind        string // informational: the profile check kind that built this probe
	Probe       Probe
}

// NoteLevel tags a note line in the transcript.
type NoteLevel string

const (
	NoteInfo NoteLevel = "info"
	NoteOK   NoteLevel = "ok"
	NoteWarn NoteLevel = "warn"
	NoteFail NoteLevel = "fail"
)

// Note is one line of human-readable detail recorded by a probe.
type Note struct {
	Level NoteLevel `json:"level"`
	Text  string    `json:"text"`
}

// Notes collects a probe's detail lines. It is safe for concurrent use
// because a timed-out probe may still be writing when the runner reads.
type Notes struct {
	mu    sync.Mutex
	items []Note
}

func (n *Notes) add(level NoteLevel, format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Note{Level: level, Text: fmt.Sprintf(format, args...)})
}

// Info records a neutral detail line.
func (n *Notes) Info(format string, args ...any) { n.add(NoteInfo, format, args...) }

// OK records something that was found in order.
func (n *Notes) OK(format string, args ...any) { n.add(NoteOK, format, args...) }

// Warn records a problem that does not fail the check by itself.
func (n *Notes) Warn(format string, args ...any) { n.add(NoteWarn, format, args...) }

// Fail records a problem that fails the check.
func (n *Notes) Fail(format string, args ...any) { n.add(NoteFail, format, args...) }

// List returns a snapshot of the recorded notes.
func (n *Notes) List() []Note {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return nil
	}
	out := make([]Note, len(n.items))
	copy(out, n.items)
	return out
}
