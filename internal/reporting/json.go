package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/stocklift/preflight/internal/diag"
)

// JSONReport is the machine-readable form of a run.
type JSONReport struct {
	Profile        string      `json:"profile"`
	OK             bool        `json:"ok"`
	AllPassed      bool        `json:"all_passed"`
	ExitCode       int         `json:"exit_code"`
	Total          int         `json:"total"`
	Passed         int         `json:"passed"`
	RequiredFailed int         `json:"required_failed"`
	AdvisoryFailed int         `json:"advisory_failed"`
	StartedAt      time.Time   `json:"started_at"`
	DurationMs     int64       `json:"duration_ms"`
	Checks         []JSONCheck `json:"checks"`
}

// JSONCheck is one check within a JSONReport.
type JSONCheck struct {
	Name          string      `json:"name"`
	Severity      string      `json:"severity"`
	Status        string      `json:"status"`
	Passed        bool        `json:"passed"`
	FailureReason string      `json:"failure_reason,omitempty"`
	DurationMs    int64       `json:"duration_ms"`
	Notes         []diag.Note `json:"notes,omitempty"`
}

// NewJSONReport flattens s into a JSONReport.
func NewJSONReport(s *diag.RunSummary) *JSONReport {
	rep := &JSONReport{
		Profile:        s.Profile,
		OK:             s.OK(),
		AllPassed:      s.AllPassed,
		ExitCode:       s.ExitCode(),
		Total:          s.Total,
		Passed:         s.PassedCount,
		RequiredFailed: s.RequiredFailed,
		AdvisoryFailed: s.AdvisoryFailed,
		StartedAt:      s.StartedAt.UTC(),
		DurationMs:     s.Duration.Milliseconds(),
		Checks:         make([]JSONCheck, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		rep.Checks = append(rep.Checks, JSONCheck{
			Name:          r.Name,
			Severity:      string(r.Severity),
			Status:        string(r.Status()),
			Passed:        r.Passed,
			FailureReason: r.FailureReason,
			DurationMs:    r.Duration.Milliseconds(),
			Notes:         r.Notes,
		})
	}
	return rep
}

// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, s *diag.RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewJSONReport(s)); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}
