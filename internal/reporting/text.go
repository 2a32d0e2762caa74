package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/profile"
	"github.com/stocklift/preflight/internal/spinner"
)

const nameWidth = 28

// TextOptions configures a Text reporter.
type TextOptions struct {
	// Color enables styled labels. It has no effect when the writer is not a
	// terminal.
	Color bool
	// Spinner animates the line of the running check.
	Spinner bool
	// Remediation is printed after the verdict.
	Remediation profile.Remediation
}

// Text streams a human-readable transcript of a run. Its Listen method is
// a diag.Listener.
type Text struct {
	w           io.Writer
	p           palette
	spin        *spinner.Spinner
	remediation profile.Remediation
}

type paint func(...string) string

type palette struct {
	pass, fail, warn, dim, bold paint
}

func plain(s ...string) string { return strings.Join(s, " ") }

func newPalette(w io.Writer, color bool) palette {
	if !color {
		return palette{pass: plain, fail: plain, warn: plain, dim: plain, bold: plain}
	}
	r := lipgloss.NewRenderer(w)
	return palette{
		pass: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Render,
		fail: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render,
		warn: r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")).Render,
		dim:  r.NewStyle().Faint(true).Render,
		bold: r.NewStyle().Bold(true).Render,
	}
}

// NewText returns a transcript writer for w.
func NewText(w io.Writer, opts TextOptions) *Text {
	t := &Text{
		w:           w,
		p:           newPalette(w, opts.Color),
		remediation: opts.Remediation,
	}
	if opts.Spinner {
		t.spin = spinner.New(w)
	}
	return t
}

// Listen renders one runner event.
func (t *Text) Listen(e diag.Event) {
	switch e.Type {
	case diag.EventRunStart:
		fmt.Fprintf(t.w, "%s %s (%d %s)\n\n", //nolint:errcheck
			t.p.bold("preflight:"), e.Profile, e.Total, plural(e.Total, "check"))
	case diag.EventCheckStart:
		if t.spin != nil {
			t.spin.Start(fmt.Sprintf("[%d/%d] %s", e.Index+1, e.Total, e.Check.Name))
		}
	case diag.EventCheckComplete:
		if t.spin != nil {
			t.spin.Stop()
		}
		t.writeResult(e.Result)
	case diag.EventRunComplete:
		t.writeSummary(e.Summary)
	}
}

func (t *Text) writeResult(r *diag.CheckResult) {
	var label string
	switch r.Status() {
	case diag.StatusPass:
		label = t.p.pass("PASS")
	case diag.StatusWarn:
		label = t.p.warn("WARN")
	default:
		label = t.p.fail("FAIL")
	}

	line := label + "  " + PadRight(r.Name, nameWidth) + " " + t.p.dim(formatDuration(r.Duration))
	if r.Severity == diag.SeverityAdvisory {
		line += " " + t.p.dim("(advisory)")
	}
	fmt.Fprintln(t.w, line) //nolint:errcheck

	for _, n := range r.Notes {
		fmt.Fprintf(t.w, "      %s %s\n", t.marker(n.Level, r.Severity), n.Text) //nolint:errcheck
	}
	if r.Errored() {
		fmt.Fprintf(t.w, "      %s %s\n", t.marker(diag.NoteFail, r.Severity), r.FailureReason) //nolint:errcheck
	}
}

// marker picks the note glyph. Failures inside an advisory check are shown
// as warnings since they cannot fail the run.
func (t *Text) marker(level diag.NoteLevel, sev diag.Severity) string {
	if level == diag.NoteFail && sev == diag.SeverityAdvisory {
		level = diag.NoteWarn
	}
	switch level {
	case diag.NoteOK:
		return t.p.pass("✓")
	case diag.NoteWarn:
		return t.p.warn("!")
	case diag.NoteFail:
		return t.p.fail("✗")
	default:
		return t.p.dim("-")
	}
}

func (t *Text) writeSummary(s *diag.RunSummary) {
	fmt.Fprintln(t.w)                 //nolint:errcheck
	fmt.Fprint(t.w, FormatSummary(s)) //nolint:errcheck
	if rem := t.remediation; !s.OK() && rem.Failure != "" {
		fmt.Fprintf(t.w, "\n%s %s\n", t.p.fail("✗"), rem.Failure) //nolint:errcheck
	} else if s.OK() && len(rem.NextSteps) > 0 {
		fmt.Fprintf(t.w, "\n%s\n", t.p.bold("Next steps:")) //nolint:errcheck
		for i, step := range rem.NextSteps {
			fmt.Fprintf(t.w, "  %d. %s\n", i+1, step) //nolint:errcheck
		}
	}
}

// PadRight pads s with spaces so its terminal display width reaches width.
func PadRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// formatDuration formats a duration in a consistent, human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
