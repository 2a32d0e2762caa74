// Package reporting renders diagnostic runs as a live text transcript, JSON
// or JUnit XML.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/stocklift/preflight/internal/diag"
)

// Format selects a report encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJUnit Format = "junit"
)

// ParseFormat accepts a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatJUnit:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, json or junit)", s)
	}
}

// Write renders s in a document format. Text output is streamed by Text
// during the run, so FormatText only writes the closing summary block.
func Write(w io.Writer, f Format, s *diag.RunSummary) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatJUnit:
		return WriteJUnitXML(w, s)
	case FormatText:
		_, err := io.WriteString(w, FormatSummary(s))
		return err
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}
