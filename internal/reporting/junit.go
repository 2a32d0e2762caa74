package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/stocklift/preflight/internal/diag"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one profile run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one check.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure is a required check that returned false.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError is a required check whose probe raised, panicked or timed out.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a failed advisory check so CI does not go red.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a RunSummary to JUnit XML format.
func ConvertToJUnit(s *diag.RunSummary) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      s.Profile,
		Tests:     s.Total,
		Time:      s.Duration.Seconds(),
		Timestamp: s.StartedAt.UTC().Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "profile", Value: s.Profile},
			{Name: "passed", Value: strconv.Itoa(s.PassedCount)},
			{Name: "required_failed", Value: strconv.Itoa(s.RequiredFailed)},
			{Name: "advisory_failed", Value: strconv.Itoa(s.AdvisoryFailed)},
			{Name: "exit_code", Value: strconv.Itoa(s.ExitCode())},
		},
	}

	for _, r := range s.Results {
		tc := convertResult(s.Profile, r)
		switch {
		case tc.Failure != nil:
			suite.Failures++
		case tc.Error != nil:
			suite.Errors++
		case tc.Skipped != nil:
			suite.Skipped++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertResult(profile string, r diag.CheckResult) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      r.Name,
		Classname: "preflight." + profile,
		Time:      r.Duration.Seconds(),
	}

	switch r.Status() {
	case diag.StatusWarn:
		msg := "advisory check failed"
		if r.Errored() {
			msg += ": " + r.FailureReason
		}
		tc.Skipped = &JUnitSkipped{Message: msg}
	case diag.StatusFail:
		if r.Errored() {
			tc.Error = &JUnitError{
				Message: r.FailureReason,
				Type:    "ProbeError",
				Body:    formatNotes(r.Notes),
			}
		} else {
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: required check failed", r.Name),
				Type:    "CheckFailure",
				Body:    formatNotes(r.Notes),
			}
		}
	}

	return tc
}

func formatNotes(notes []diag.Note) string {
	var b strings.Builder
	for _, n := range notes {
		fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(string(n.Level)), n.Text)
	}
	return b.String()
}

// WriteJUnitXML writes the summary as an indented JUnit XML document.
func WriteJUnitXML(w io.Writer, s *diag.RunSummary) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(s), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
