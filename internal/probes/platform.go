package probes

import (
	"context"
	"errors"

	"github.com/stocklift/preflight/internal/diag"
	"github.com/stocklift/preflight/internal/environ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

type platformParams struct {
	Name        string   `mapstructure:"name"`
	EnvMarkers  []string `mapstructure:"env_markers"`
	PathMarkers []string `mapstructure:"path_markers"`
	// MinMemoryMB fails the check when available memory is below it.
	// Zero only reports memory.
	MinMemoryMB uint64 `mapstructure:"min_memory_mb"`
	// WarnOnly keeps the check passing when memory is low.
	WarnOnly bool `mapstructure:"warn_only"`
}

const bytesPerMB = 1 << 20

func newPlatform(p platformParams) (diag.Probe, error) {
	name := firstNonEmpty(p.Name, "hosting platform")
	if len(p.EnvMarkers) == 0 && len(p.PathMarkers) == 0 {
		return nil, errors.New("platform: at least one env or path marker is required")
	}

	return func(_ context.Context, env environ.Env, notes *diag.Notes) (bool, error) {
		if detectPlatform(env, p) {
			notes.OK("%s environment detected", name)
		} else {
			notes.Info("Local environment (%s-specific checks skipped)", name)
		}

		avail, err := env.AvailableMemory()
		switch {
		case errors.Is(err, environ.ErrUnsupported):
			notes.Info("Memory check not available on this platform")
			return true, nil
		case err != nil:
			notes.Info("Memory check unavailable: %v", err)
			return true, nil
		}

		notes.Info("%s", printer.Sprintf("Available memory: %.1f GB", float64(avail)/(1<<30)))
		if p.MinMemoryMB > 0 && avail < p.MinMemoryMB*bytesPerMB {
			notes.Warn("%s", printer.Sprintf("Low memory environment detected (below %d MB)", p.MinMemoryMB))
			return p.WarnOnly, nil
		}
		notes.OK("Sufficient memory available")
		return true, nil
	}, nil
}

func detectPlatform(env environ.Env, p platformParams) bool {
	for _, key := range p.EnvMarkers {
		if _, ok := env.LookupEnv(key); ok {
			return true
		}
	}
	for _, path := range p.PathMarkers {
		if _, err := env.Stat(path); err == nil {
			return true
		}
	}
	return false
}
