// Package wizard collects the answers for a starter .preflight.yaml.
package wizard

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/stocklift/preflight/internal/projectconfig"
	"github.com/stocklift/preflight/internal/reporting"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Answers holds all fields collected by the init wizard.
type Answers struct {
	AppDir      string
	Module      string
	Attribute   string
	Interpreter string
	Dotenv      []string
	Format      string
	Timeout     time.Duration
}

// DefaultAnswers mirrors projectconfig.New().
func DefaultAnswers() *Answers {
	cfg := projectconfig.New()
	return &Answers{
		AppDir:      cfg.App.Dir,
		Module:      cfg.App.Module,
		Attribute:   cfg.App.Attribute,
		Interpreter: cfg.Runtime.Interpreter,
		Dotenv:      cfg.App.Dotenv,
		Format:      cfg.Run.Format,
		Timeout:     cfg.Run.Timeout,
	}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateModule accepts a dotted import path such as "app" or "web.server".
func ValidateModule(s string) error {
	if s == "" {
		return fmt.Errorf("module is required")
	}
	if !identPattern.MatchString(s) {
		return fmt.Errorf("%q is not a valid module path", s)
	}
	return nil
}

// ValidateAttribute accepts a single identifier.
func ValidateAttribute(s string) error {
	if s == "" {
		return fmt.Errorf("attribute is required")
	}
	if strings.Contains(s, ".") || !identPattern.MatchString(s) {
		return fmt.Errorf("%q is not a valid attribute name", s)
	}
	return nil
}

// ValidateTimeout accepts a positive Go duration.
func ValidateTimeout(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Run shows an interactive huh form seeded with initial and returns the
// edited answers.
func Run(in io.Reader, out io.Writer, initial *Answers) (*Answers, error) {
	if initial == nil {
		initial = DefaultAnswers()
	}
	var (
		appDir      = initial.AppDir
		module      = initial.Module
		attribute   = initial.Attribute
		interpreter = initial.Interpreter
		dotenvRaw   = strings.Join(initial.Dotenv, ", ")
		format      = initial.Format
		timeoutRaw  = initial.Timeout.String()
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Application directory").
				Description("Relative to this config file").
				Value(&appDir),
			huh.NewInput().
				Title("Application module").
				Description("Module that defines the application object").
				Placeholder("app").
				Value(&module).
				Validate(func(s string) error {
					return ValidateModule(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Application attribute").
				Description("Name of the application object inside the module").
				Placeholder("app").
				Value(&attribute).
				Validate(func(s string) error {
					return ValidateAttribute(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Interpreter").
				Description("Command used to run checks").
				Placeholder("python3").
				Value(&interpreter).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("interpreter is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Dotenv files").
				Description("Comma-separated files consulted by environment checks").
				Value(&dotenvRaw),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Report format").
				Options(
					huh.NewOption("text", string(reporting.FormatText)),
					huh.NewOption("json", string(reporting.FormatJSON)),
					huh.NewOption("junit", string(reporting.FormatJUnit)),
				).
				Value(&format),
			huh.NewInput().
				Title("Per-check timeout").
				Placeholder("5m0s").
				Value(&timeoutRaw).
				Validate(func(s string) error {
					return ValidateTimeout(strings.TrimSpace(s))
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutRaw))
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return &Answers{
		AppDir:      strings.TrimSpace(appDir),
		Module:      strings.TrimSpace(module),
		Attribute:   strings.TrimSpace(attribute),
		Interpreter: strings.TrimSpace(interpreter),
		Dotenv:      splitAndTrim(dotenvRaw),
		Format:      format,
		Timeout:     timeout,
	}, nil
}

const header = "# preflight project configuration, generated by `preflight init`.\n\n"

// Render produces the .preflight.yaml document for a.
func Render(a *Answers) ([]byte, error) {
	if err := ValidateModule(a.Module); err != nil {
		return nil, err
	}
	if err := ValidateAttribute(a.Attribute); err != nil {
		return nil, err
	}
	if _, err := reporting.ParseFormat(a.Format); err != nil {
		return nil, err
	}

	cfg := projectconfig.ProjectConfig{
		App: projectconfig.AppConfig{
			Dir:       a.AppDir,
			Module:    a.Module,
			Attribute: a.Attribute,
			Dotenv:    a.Dotenv,
		},
		Runtime: projectconfig.RuntimeConfig{Interpreter: a.Interpreter},
		Run: projectconfig.RunConfig{
			Timeout: a.Timeout,
			Format:  a.Format,
		},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return append([]byte(header), data...), nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
