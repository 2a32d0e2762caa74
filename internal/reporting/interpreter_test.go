package reporting

import (
	"strings"
	"testing"

	"github.com/stocklift/preflight/internal/diag"
	"github.com/stretchr/testify/assert"
)

func TestInterpretPassRate(t *testing.T) {
	tests := []struct {
		name          string
		passed, total int
		want          string
	}{
		{"all", 7, 7, "All checks passed (100%)"},
		{"most", 8, 10, "Most checks passed (80%)"},
		{"half", 1, 2, "About half the checks passed (50%)"},
		{"few", 1, 3, "Few checks passed (33%)"},
		{"none", 0, 0, "No checks to run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretPassRate(tt.passed, tt.total))
		})
	}
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		name    string
		results []diag.CheckResult
		want    string
	}{
		{
			name: "empty run is ready",
			want: "READY",
		},
		{
			name: "advisory failure",
			results: []diag.CheckResult{
				{Name: "A", Severity: diag.SeverityRequired, Passed: true},
				{Name: "Env", Severity: diag.SeverityAdvisory},
			},
			want: "READY with 1 warning",
		},
		{
			name: "required failures",
			results: []diag.CheckResult{
				{Name: "A", Severity: diag.SeverityRequired, Passed: true},
				{Name: "B", Severity: diag.SeverityRequired},
				{Name: "C", Severity: diag.SeverityRequired, FailureReason: "X not found"},
			},
			want: "NOT READY: 2 required checks failed (B, C)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verdict(diag.Summarize("p", tt.results)))
		})
	}
}

func TestFormatSummary(t *testing.T) {
	out := FormatSummary(newTestSummary())

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Summary: 1/4 checks passed", lines[0])
	assert.Contains(t, out, "Few checks passed (25%)")
	assert.Contains(t, out, "Warnings: Environment Variables")
	assert.Contains(t, out, "Duration: 3.5s")
	assert.Equal(t, "Verdict: NOT READY: 2 required checks failed (Required Directories, Package Imports)", lines[len(lines)-1])
}

func TestFormatSummary_Empty(t *testing.T) {
	out := FormatSummary(diag.Summarize("empty", nil))
	assert.Contains(t, out, "Summary: 0/0 checks passed")
	assert.Contains(t, out, "Verdict: READY")
	assert.NotContains(t, out, "Warnings")
}
