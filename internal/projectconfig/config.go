// Package projectconfig provides the ProjectConfig struct and loader for
// .preflight.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the start
// directory upwards.
const FileName = ".preflight.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultAppDir       = "."
	DefaultAppModule    = "app"
	DefaultAppAttribute = "app"
	DefaultDotenvFile   = ".env"

	DefaultInterpreter = "python3"

	DefaultCheckTimeout = 5 * time.Minute
	DefaultFormat       = "text"

	maxWalkLevels = 10
)

// AppConfig locates the application being checked.
type AppConfig struct {
	Dir       string   `yaml:"dir,omitempty"`
	Module    string   `yaml:"module,omitempty"`
	Attribute string   `yaml:"attribute,omitempty"`
	Dotenv    []string `yaml:"dotenv,omitempty"`
}

// RuntimeConfig describes the application's interpreter.
type RuntimeConfig struct {
	Interpreter string `yaml:"interpreter,omitempty"`
}

// RunConfig holds runner and output settings.
type RunConfig struct {
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Format  string        `yaml:"format,omitempty"`
	Color   *bool         `yaml:"color,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .preflight.yaml.
type ProjectConfig struct {
	App     AppConfig     `yaml:"app,omitempty"`
	Runtime RuntimeConfig `yaml:"runtime,omitempty"`
	Run     RunConfig     `yaml:"run,omitempty"`

	// Path is the config file that was loaded, empty when defaults are used.
	Path string `yaml:"-"`
}

// envOverrides are read from the process environment after the file.
type envOverrides struct {
	AppDir      string        `env:"PREFLIGHT_APP_DIR"`
	AppModule   string        `env:"PREFLIGHT_APP_MODULE"`
	Interpreter string        `env:"PREFLIGHT_INTERPRETER"`
	Timeout     time.Duration `env:"PREFLIGHT_TIMEOUT"`
	Format      string        `env:"PREFLIGHT_FORMAT"`
	NoColor     string        `env:"NO_COLOR"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		App: AppConfig{
			Dir:       DefaultAppDir,
			Module:    DefaultAppModule,
			Attribute: DefaultAppAttribute,
			Dotenv:    []string{DefaultDotenvFile},
		},
		Runtime: RuntimeConfig{
			Interpreter: DefaultInterpreter,
		},
		Run: RunConfig{
			Timeout: DefaultCheckTimeout,
			Format:  DefaultFormat,
			Color:   boolPtr(true),
		},
	}
}

// Load finds .preflight.yaml by walking up from startDir (max 10 levels),
// unmarshals it, fills in missing fields with defaults and then applies
// PREFLIGHT_* environment overrides. A relative App.Dir is resolved against
// the directory holding the config file, or startDir when there is none.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", startDir, err)
	}
	baseDir := absStart

	data, path, err := findConfigFile(absStart)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// no file found → defaults
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		mergeConfig(cfg, &fileCfg)
		cfg.Path = path
		baseDir = filepath.Dir(path)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.App.Dir) {
		cfg.App.Dir = filepath.Join(baseDir, cfg.App.Dir)
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .preflight.yaml. Returns
// os.ErrNotExist if no config file is found. Propagates real I/O errors
// (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, string, error) {
	for i := 0; i < maxWalkLevels; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// App
	if src.App.Dir != "" {
		dst.App.Dir = src.App.Dir
	}
	if src.App.Module != "" {
		dst.App.Module = src.App.Module
	}
	if src.App.Attribute != "" {
		dst.App.Attribute = src.App.Attribute
	}
	if src.App.Dotenv != nil {
		dst.App.Dotenv = src.App.Dotenv
	}

	// Runtime
	if src.Runtime.Interpreter != "" {
		dst.Runtime.Interpreter = src.Runtime.Interpreter
	}

	// Run
	if src.Run.Timeout != 0 {
		dst.Run.Timeout = src.Run.Timeout
	}
	if src.Run.Format != "" {
		dst.Run.Format = src.Run.Format
	}
	if src.Run.Color != nil {
		dst.Run.Color = src.Run.Color
	}
}

func applyEnv(cfg *ProjectConfig) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.AppDir != "" {
		cfg.App.Dir = o.AppDir
	}
	if o.AppModule != "" {
		cfg.App.Module = o.AppModule
	}
	if o.Interpreter != "" {
		cfg.Runtime.Interpreter = o.Interpreter
	}
	if o.Timeout != 0 {
		cfg.Run.Timeout = o.Timeout
	}
	if o.Format != "" {
		cfg.Run.Format = o.Format
	}
	if o.NoColor != "" {
		cfg.Run.Color = boolPtr(false)
	}
	return nil
}

// ColorEnabled reports the effective color setting.
func (c *ProjectConfig) ColorEnabled() bool {
	return c.Run.Color == nil || *c.Run.Color
}

func boolPtr(b bool) *bool {
	return &b
}
