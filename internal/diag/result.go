package diag

import "time"

// Process exit statuses derived from a completed run.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Status is the display outcome of one check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	// StatusWarn marks a failed advisory check.
	StatusWarn Status = "warn"
)

// CheckResult is the outcome of executing one check.
type CheckResult struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Passed   bool     `json:"passed"`
	// FailureReason is set when the probe errored, panicked or timed out
	// rather than cleanly returning false.
	FailureReason string        `json:"failure_reason,omitempty"`
	Notes         []Note        `json:"notes,omitempty"`
	Duration      time.Duration `json:"-"`
}

// Status maps the result onto pass, fail, or warn.
func (r CheckResult) Status() Status {
	switch {
	case r.Passed:
		return StatusPass
	case r.Severity == SeverityAdvisory:
		return StatusWarn
	default:
		return StatusFail
	}
}

// Errored reports whether the probe raised instead of returning false.
func (r CheckResult) Errored() bool {
	return r.FailureReason != ""
}

// RunSummary aggregates every result of one run.
type RunSummary struct {
	Profile        string        `json:"profile"`
	Results        []CheckResult `json:"checks"`
	Total          int           `json:"total"`
	PassedCount    int           `json:"passed"`
	AllPassed      bool          `json:"all_passed"`
	RequiredFailed int           `json:"required_failed"`
	AdvisoryFailed int           `json:"advisory_failed"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"-"`
}

// Summarize computes the aggregate counts over results.
func Summarize(profile string, results []CheckResult) *RunSummary {
	s := &RunSummary{Profile: profile, Results: results, Total: len(results)}
	for _, r := range results {
		switch {
		case r.Passed:
			s.PassedCount++
		case r.Severity == SeverityAdvisory:
			s.AdvisoryFailed++
		default:
			s.RequiredFailed++
		}
	}
	s.AllPassed = s.PassedCount == s.Total
	return s
}

// OK reports whether every required check passed.
func (s *RunSummary) OK() bool {
	return s.RequiredFailed == 0
}

// ExitCode is ExitSuccess when no required check failed. Advisory failures
// never change it.
func (s *RunSummary) ExitCode() int {
	if s.OK() {
		return ExitSuccess
	}
	return ExitFailure
}

// Failed returns the failed results of the given severity, in run order.
func (s *RunSummary) Failed(sev Severity) []CheckResult {
	var out []CheckResult
	for _, r := range s.Results {
		if !r.Passed && r.Severity == sev {
			out = append(out, r)
		}
	}
	return out
}
