package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/environ"
	"github.com/stocklift/preflight/internal/probes"
	"github.com/stocklift/preflight/internal/profile"
	"github.com/stocklift/preflight/internal/projectconfig"
	"github.com/stocklift/preflight/internal/reporting"
	"golang.org/x/term"
)

func newCompatCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compat",
		Short: "Check interpreter, package and application compatibility",
		Long: `Run the built-in "compatibility" profile: interpreter version, package
imports, a TensorFlow smoke test, importing the application object, the
expected directory layout, model artifacts and hosting platform resources.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProfile(cmd, opts, profile.Compatibility)
		},
	}
}

func newDeployCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Check that the application is ready to deploy",
		Long: `Run the built-in "deploy" profile: required files and directories must
exist. Recommended environment variables are advisory and never change the
exit status. On success the deployment next steps are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProfile(cmd, opts, profile.Deploy)
		},
	}
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <profile | profile.yaml>",
		Short: "Run a built-in or custom profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd, opts, args[0])
		},
	}
}

// newEnv opens the environment a run probes.
var newEnv = func(dir string, dotenvFiles ...string) (environ.Env, error) {
	return environ.NewOS(dir, dotenvFiles...)
}

// loadConfig reads .preflight.yaml from --dir (or the working directory)
// and applies the persistent flags on top. --dir always names the
// application directory, whatever app.dir a parent config file sets.
func loadConfig(cmd *cobra.Command, opts *options) (*projectconfig.ProjectConfig, error) {
	start := opts.dir
	if start == "" {
		start = "."
	}
	cfg, err := projectconfig.Load(start)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		slog.Debug("loaded project config", "path", cfg.Path)
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		dir, err := filepath.Abs(opts.dir)
		if err != nil {
			return nil, fmt.Errorf("resolving --dir: %w", err)
		}
		cfg.App.Dir = dir
	}
	if flags.Changed("format") {
		cfg.Run.Format = opts.format
	}
	if flags.Changed("timeout") {
		cfg.Run.Timeout = opts.timeout
	}
	if opts.noColor {
		off := false
		cfg.Run.Color = &off
	}
	return cfg, nil
}

func runProfile(cmd *cobra.Command, opts *options, ref string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	format, err := reporting.ParseFormat(cfg.Run.Format)
	if err != nil {
		return err
	}

	p, err := profile.Resolve(ref)
	if err != nil {
		return err
	}
	reg, err := p.Registry(probes.Defaults{
		Interpreter:  cfg.Runtime.Interpreter,
		AppModule:    cfg.App.Module,
		AppAttribute: cfg.App.Attribute,
	})
	if err != nil {
		return err
	}

	env, err := newEnv(cfg.App.Dir, cfg.App.Dotenv...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	runner := &diag.Runner{Env: env, Timeout: cfg.Run.Timeout}

	var listeners []diag.Listener
	// The transcript goes to stdout unless stdout carries a document format.
	if format == reporting.FormatText || opts.output != "" {
		tty := isTerminal(out)
		listeners = append(listeners, reporting.NewText(out, reporting.TextOptions{
			Color:       tty && cfg.ColorEnabled(),
			Spinner:     tty,
			Remediation: p.Remediation,
		}).Listen)
	}

	// A text report file gets the same transcript, unstyled.
	var textFile *os.File
	if format == reporting.FormatText && opts.output != "" {
		textFile, err = createReportFile(opts.output)
		if err != nil {
			return err
		}
		defer textFile.Close() //nolint:errcheck
		listeners = append(listeners, reporting.NewText(textFile, reporting.TextOptions{
			Remediation: p.Remediation,
		}).Listen)
	}
	runner.Listener = fanOut(listeners)

	slog.Debug("running profile", "profile", p.Name, "source", p.Source, "dir", cfg.App.Dir, "checks", reg.Len())
	summary, err := runner.Run(cmd.Context(), reg)
	if err != nil {
		return fmt.Errorf("running %s: %w", p.Name, err)
	}

	if textFile != nil {
		if err := textFile.Close(); err != nil {
			return fmt.Errorf("writing report file: %w", err)
		}
		fmt.Fprintf(out, "\nReport saved to: %s\n", opts.output) //nolint:errcheck
	} else if err := writeReport(out, opts.output, format, summary); err != nil {
		return err
	}

	if !summary.OK() {
		return &ChecksFailedError{Profile: p.Name, Failed: summary.RequiredFailed}
	}
	return nil
}

func fanOut(listeners []diag.Listener) diag.Listener {
	switch len(listeners) {
	case 0:
		return nil
	case 1:
		return listeners[0]
	}
	return func(e diag.Event) {
		for _, l := range listeners {
			l(e)
		}
	}
}

func createReportFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating report file: %w", err)
	}
	return f, nil
}

// writeReport emits document formats. Text has already been streamed to
// out, so it is never written here.
func writeReport(out io.Writer, path string, format reporting.Format, s *diag.RunSummary) error {
	if format == reporting.FormatText {
		return nil
	}
	if path == "" {
		return reporting.Write(out, format, s)
	}

	f, err := createReportFile(path)
	if err != nil {
		return err
	}
	if err := reporting.Write(f, format, s); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}
	fmt.Fprintf(out, "\nReport saved to: %s\n", path) //nolint:errcheck
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
