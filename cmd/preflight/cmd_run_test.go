package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/environ"
	"github.com/stocklift/preflight/internal/environ/environtest"
	"github.com/stocklift/preflight/internal/profile"
	"github.com/stocklift/preflight/internal/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customProfile = `name: custom
checks:
  - name: Layout
    kind: paths
    severity: required
    params:
      type: dir
      paths: [static]
  - name: Secrets
    kind: env_vars
    severity: advisory
    params:
      vars: [PREFLIGHT_TEST_SECRET]
`

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"compat", "deploy", "run", "list", "validate", "init"} {
		assert.Contains(t, names, want)
	}
}

func TestDeployCommand_Ready(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, deployTree...)

	out, err := executeCommand(t, "deploy", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "preflight: deploy (3 checks)")
	assert.Regexp(t, `(?m)^PASS  Required Files`, out)
	assert.Regexp(t, `(?m)^PASS  Required Directories`, out)
	assert.Contains(t, out, "Next steps:")
	assert.Contains(t, out, "Deploy!")
	assert.NotContains(t, out, "Please fix")
}

func TestDeployCommand_MissingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, deployTree[:len(deployTree)-1]...)

	out, err := executeCommand(t, "deploy", "--dir", dir)
	require.Error(t, err)

	var checksErr *ChecksFailedError
	require.True(t, errors.As(err, &checksErr))
	assert.Equal(t, profile.Deploy, checksErr.Profile)
	assert.Equal(t, 1, checksErr.Failed)
	assert.Equal(t, ExitChecksFailed, exitCode(err))

	assert.Regexp(t, `(?m)^FAIL  Required Directories`, out)
	assert.Contains(t, out, "exports")
	assert.Contains(t, out, "Please fix the issues above before deploying")
	assert.NotContains(t, out, "Next steps:")
}

func TestDeployCommand_DirBeatsParentConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".preflight.yaml"), []byte("runtime:\n  interpreter: python3.11\n"), 0o644))
	svc := filepath.Join(root, "svc")
	writeTree(t, svc, deployTree...)

	out, err := executeCommand(t, "deploy", "--dir", svc)
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^PASS  Required Files`, out)
	assert.Regexp(t, `(?m)^PASS  Required Directories`, out)
	assert.NotContains(t, out, "(missing)")
}

func TestCompatCommand(t *testing.T) {
	tests := []struct {
		name      string
		env       *environ.Static
		wantErr   bool
		wantLines []string
		wantText  []string
	}{
		{
			name: "all pass",
			env: &environ.Static{
				Files:   compatFS(true),
				RunFunc: environtest.Interpreter{Version: "3.11.4"}.Run,
				Memory:  4 << 30,
			},
			wantLines: []string{`(?m)^PASS  Python Version`, `(?m)^PASS  Render Compatibility`},
			wantText:  []string{"Summary: 7/7 checks passed", "Verdict: READY\n"},
		},
		{
			name: "model artifacts missing",
			env: &environ.Static{
				Files:   compatFS(false),
				RunFunc: environtest.Interpreter{Version: "3.11.4"}.Run,
				Memory:  4 << 30,
			},
			wantLines: []string{`(?m)^PASS  Model Files`},
			wantText: []string{
				"u2net/u2netp.pth (missing - will be created at runtime)",
				"Summary: 7/7 checks passed",
			},
		},
		{
			name: "failing import",
			env: &environ.Static{
				Files:   compatFS(true),
				RunFunc: environtest.Interpreter{Version: "3.11.4", Broken: []string{"cv2"}}.Run,
				Memory:  4 << 30,
			},
			wantErr:   true,
			wantLines: []string{`(?m)^FAIL  Package Imports`, `(?m)^PASS  Flask App`},
			wantText: []string{
				"OpenCV: ModuleNotFoundError: No module named 'cv2'",
				"Summary: 6/7 checks passed",
				"NOT READY: 1 required check failed (Package Imports)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubEnv(t, tt.env)

			out, err := executeCommand(t, "compat", "--dir", t.TempDir())
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ExitChecksFailed, exitCode(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, ExitSuccess, exitCode(err))
			}
			assert.Contains(t, out, "preflight: compatibility (7 checks)")
			for _, re := range tt.wantLines {
				assert.Regexp(t, re, out)
			}
			for _, s := range tt.wantText {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestRunCommand_TextOutputFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "static/")
	path := writeProfile(t, dir, customProfile)
	report := filepath.Join(dir, "reports", "preflight.txt")

	out, err := executeCommand(t, "run", path, "--dir", dir, "--output", report)
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^PASS  Layout`, out)
	assert.Contains(t, out, "Report saved to: "+report)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "preflight: custom (2 checks)")
	assert.Regexp(t, `(?m)^PASS  Layout`, text)
	assert.Regexp(t, `(?m)^WARN  Secrets`, text)
	assert.Contains(t, text, "PREFLIGHT_TEST_SECRET not set")
	assert.Contains(t, text, "Verdict: READY with 1 warning")
	assert.NotContains(t, text, "\x1b[")
	assert.NotContains(t, text, "Report saved to")
}

func TestRunCommand_AdvisoryDoesNotFail(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "static/")
	path := writeProfile(t, dir, customProfile)

	out, err := executeCommand(t, "run", path, "--dir", dir)
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^WARN  Secrets`, out)
	assert.Contains(t, out, "Verdict: READY with 1 warning")
}

func TestRunCommand_DotenvSatisfiesEnvCheck(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "static/")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PREFLIGHT_TEST_SECRET=s3cret\n"), 0o644))
	path := writeProfile(t, dir, customProfile)

	out, err := executeCommand(t, "run", path, "--dir", dir)
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^PASS  Secrets`, out)
	assert.NotContains(t, out, "s3cret")
}

func TestRunCommand_JSONFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeProfile(t, dir, customProfile)

	out, err := executeCommand(t, "run", path, "--dir", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitChecksFailed, exitCode(err))

	var rep reporting.JSONReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep), "stdout should hold only the JSON document")
	assert.Equal(t, "custom", rep.Profile)
	assert.False(t, rep.OK)
	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 0, rep.Passed)
	require.Len(t, rep.Checks, 2)
	assert.Equal(t, "fail", rep.Checks[0].Status)
	assert.Equal(t, "warn", rep.Checks[1].Status)
}

func TestRunCommand_JUnitOutputFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "static/")
	path := writeProfile(t, dir, customProfile)
	report := filepath.Join(dir, "reports", "preflight.xml")

	out, err := executeCommand(t, "run", path, "--dir", dir, "--format", "junit", "--output", report)
	require.NoError(t, err)

	// transcript still printed when the document goes to a file
	assert.Contains(t, out, "preflight: custom (2 checks)")
	assert.Contains(t, out, "Report saved to: "+report)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testsuite name="custom"`)
	assert.Contains(t, string(data), "<skipped")
}

func TestRunCommand_ConfigFileFormat(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "static/")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".preflight.yaml"), []byte("run:\n  format: json\n"), 0o644))
	path := writeProfile(t, dir, customProfile)

	out, err := executeCommand(t, "run", path, "--dir", dir)
	require.NoError(t, err)

	var rep reporting.JSONReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.OK)

	// flag beats config file
	out, err = executeCommand(t, "run", path, "--dir", dir, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Summary: 1/2 checks passed")
}

func TestRunCommand_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		profile string
		wantErr string
	}{
		{
			name:    "unknown profile",
			args:    []string{"run", "nightly"},
			wantErr: "profile not found",
		},
		{
			name:    "missing profile file",
			args:    []string{"run", filepath.Join(dir, "nope.yaml")},
			wantErr: "reading profile",
		},
		{
			name:    "bad format",
			args:    []string{"deploy", "--format", "xml"},
			wantErr: `unknown format "xml"`,
		},
		{
			name: "duplicate check names",
			profile: `name: dup
checks:
  - {name: A, kind: paths, params: {paths: [x]}}
  - {name: A, kind: paths, params: {paths: [y]}}
`,
			wantErr: "duplicate check name",
		},
		{
			name: "schema violation",
			profile: `name: bad
checks:
  - {name: A, kind: telnet}
`,
			wantErr: "invalid profile",
		},
		{
			name:    "requires one arg",
			args:    []string{"run"},
			wantErr: "accepts 1 arg(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.profile != "" {
				args = []string{"run", writeProfile(t, t.TempDir(), tt.profile)}
			}
			args = append(args, "--dir", dir)

			_, err := executeCommand(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitError, exitCode(err))

			var cfgErr *diag.ConfigError
			if tt.name == "duplicate check names" {
				assert.True(t, errors.As(err, &cfgErr))
			}
		})
	}
}
