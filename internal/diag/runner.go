package diag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/stocklift/preflight/internal/environ"
)

// EventType identifies a runner progress event.
type EventType string

const (
	EventRunStart      EventType = "run_start"
	EventCheckStart    EventType = "check_start"
	EventCheckComplete EventType = "check_complete"
	EventRunComplete   EventType = "run_complete"
)

// Event is a progress update. Index is the zero-based position of the check
// currently executing; it is meaningful for the check events only.
type Event struct {
	Type    EventType
	Profile string
	Index   int
	Total   int
	Check   Check
	Result  *CheckResult
	Summary *RunSummary
}

// Listener receives progress events synchronously, in order.
type Listener func(Event)

// PanicError is the failure recorded for a probe that panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError is the failure recorded for a probe that exceeded the
// runner's per-check timeout.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s", e.After)
}

const unnamedErrorReason = "check returned an error without a message"

// Runner executes registries one check at a time.
type Runner struct {
	// Env is handed to every probe.
	Env environ.Env
	// Timeout bounds each probe when positive. Zero means no limit.
	Timeout time.Duration
	// Listener is optional.
	Listener Listener
}

// Run executes every check in reg in order and returns the summary. Probe
// failures of any kind are recorded in the summary; the returned error is
// reserved for a nil registry or a cancelled ctx, in which case no summary
// is produced.
func (r *Runner) Run(ctx context.Context, reg *Registry) (*RunSummary, error) {
	if reg == nil {
		return nil, errors.New("diag: nil registry")
	}

	checks := reg.Checks()
	started := time.Now()
	r.notify(Event{Type: EventRunStart, Profile: reg.Name(), Total: len(checks)})
	slog.Debug("diagnostic run starting", "profile", reg.Name(), "checks", len(checks))

	results := make([]CheckResult, 0, len(checks))
	for i, c := range checks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted before check %q: %w", c.Name, err)
		}

		r.notify(Event{Type: EventCheckStart, Profile: reg.Name(), Index: i, Total: len(checks), Check: c})
		results = append(results, r.execute(ctx, c))
		r.notify(Event{Type: EventCheckComplete, Profile: reg.Name(), Index: i, Total: len(checks), Check: c, Result: &results[i]})
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run interrupted: %w", err)
	}

	summary := Summarize(reg.Name(), results)
	summary.StartedAt = started
	summary.Duration = time.Since(started)

	r.notify(Event{Type: EventRunComplete, Profile: reg.Name(), Total: len(checks), Summary: summary})
	slog.Debug("diagnostic run complete", "profile", reg.Name(),
		"passed", summary.PassedCount, "total", summary.Total, "duration", summary.Duration)
	return summary, nil
}

func (r *Runner) execute(ctx context.Context, c Check) CheckResult {
	notes := &Notes{}
	start := time.Now()
	passed, err := r.invoke(ctx, c, notes)

	result := CheckResult{
		Name:     c.Name,
		Severity: c.Severity,
		Passed:   passed && err == nil,
		Duration: time.Since(start),
	}
	if err != nil {
		result.FailureReason = err.Error()
		if result.FailureReason == "" {
			result.FailureReason = unnamedErrorReason
		}
		slog.Debug("check raised", "check", c.Name, "error", err)
	}
	result.Notes = notes.List()

	slog.Debug("check finished", "check", c.Name, "status", result.Status(), "duration", result.Duration)
	return result
}

func (r *Runner) invoke(ctx context.Context, c Check, notes *Notes) (bool, error) {
	if r.Timeout <= 0 {
		return callProbe(ctx, c.Probe, r.Env, notes)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	type outcome struct {
		passed bool
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		passed, err := callProbe(ctx, c.Probe, r.Env, notes)
		done <- outcome{passed: passed, err: err}
	}()

	select {
	case o := <-done:
		return o.passed, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, &TimeoutError{After: r.Timeout}
		}
		return false, ctx.Err()
	}
}

// callProbe is the failure-isolation boundary around a single probe.
func callProbe(ctx context.Context, probe Probe, env environ.Env, notes *Notes) (passed bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			slog.Debug("check panicked", "panic", v, "stack", string(debug.Stack()))
			passed = false
			err = &PanicError{Value: v}
		}
	}()
	return probe(ctx, env, notes)
}

func (r *Runner) notify(e Event) {
	if r.Listener != nil {
		r.Listener(e)
	}
}
