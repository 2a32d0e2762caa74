package reporting

import (
	"fmt"
	"strings"

	"github.com/stocklift/preflight/internal/diag"
)

// InterpretPassRate returns a human-readable explanation of passed/total.
func InterpretPassRate(passed, total int) string {
	if total == 0 {
		return "No checks to run"
	}
	pct := float64(passed) / float64(total) * 100
	switch {
	case passed == total:
		return fmt.Sprintf("All checks passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most checks passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the checks passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few checks passed (%.0f%%)", pct)
	}
}

// Verdict is the one-line conclusion of a run.
func Verdict(s *diag.RunSummary) string {
	switch {
	case !s.OK():
		names := failedNames(s.Failed(diag.SeverityRequired))
		return fmt.Sprintf("NOT READY: %d required %s failed (%s)",
			s.RequiredFailed, plural(s.RequiredFailed, "check"), strings.Join(names, ", "))
	case s.AdvisoryFailed > 0:
		return fmt.Sprintf("READY with %d %s", s.AdvisoryFailed, plural(s.AdvisoryFailed, "warning"))
	default:
		return "READY"
	}
}

// FormatSummary produces the summary block printed after the per-check lines.
func FormatSummary(s *diag.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summary: %d/%d checks passed\n", s.PassedCount, s.Total)
	fmt.Fprintf(&b, "  %s\n", InterpretPassRate(s.PassedCount, s.Total))
	if s.AdvisoryFailed > 0 {
		fmt.Fprintf(&b, "  Warnings: %s\n", strings.Join(failedNames(s.Failed(diag.SeverityAdvisory)), ", "))
	}
	fmt.Fprintf(&b, "  Duration: %s\n", formatDuration(s.Duration))
	fmt.Fprintf(&b, "Verdict: %s\n", Verdict(s))

	return b.String()
}

func failedNames(results []diag.CheckResult) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	return names
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
