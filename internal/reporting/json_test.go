package reporting

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stocklift/preflight/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, newTestSummary()))

	var got JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "deploy", got.Profile)
	assert.False(t, got.OK)
	assert.False(t, got.AllPassed)
	assert.Equal(t, diag.ExitFailure, got.ExitCode)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 1, got.Passed)
	assert.Equal(t, int64(3500), got.DurationMs)
	require.Len(t, got.Checks, 4)

	assert.Equal(t, "pass", got.Checks[0].Status)
	assert.Equal(t, "fail", got.Checks[1].Status)
	assert.Equal(t, "No module named 'cv2'", got.Checks[2].FailureReason)
	assert.Equal(t, "warn", got.Checks[3].Status)
	assert.Equal(t, "advisory", got.Checks[3].Severity)
	assert.Equal(t, diag.NoteWarn, got.Checks[3].Notes[0].Level)
}

func TestWriteJSON_EmptyRunHasChecksArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, diag.Summarize("empty", nil)))

	assert.Contains(t, buf.String(), `"checks": []`)
	assert.Contains(t, buf.String(), `"ok": true`)
	assert.Contains(t, buf.String(), `"all_passed": true`)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: " junit ", want: FormatJUnit},
		{in: "", want: FormatText},
		{in: "yaml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrite_Dispatch(t *testing.T) {
	s := newTestSummary()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJUnit, s))
	assert.Contains(t, buf.String(), "<testsuites")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, s))
	assert.Contains(t, buf.String(), `"profile": "deploy"`)

	buf.Reset()
	require.NoError(t, Write(&buf, FormatText, s))
	assert.Contains(t, buf.String(), "Summary: 1/4 checks passed")

	assert.Error(t, Write(&buf, Format("csv"), s))
}
