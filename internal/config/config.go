// Package config holds the tile viewer's runtime configuration: the
// values callers would otherwise have to thread through by hand across
// the REST client, fetch runner, and traversal.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/geo3d/tileviewer/internal/view"
)

// Config is the tile viewer's full runtime configuration.
type Config struct {
	// APIKey is the Google Photorealistic 3D Tiles API key.
	APIKey string

	// Endpoint overrides the tile service's base URL (tests only).
	Endpoint string

	// LogLevel is the slog level the root logger is configured at.
	LogLevel slog.Level

	// PixelErrorBudget is the screen-space-error threshold below which a
	// tile is considered detailed enough (default: view.PixelErrorBudget).
	PixelErrorBudget float64

	// MaxTraversalDepth bounds recursive tile refinement per frame.
	MaxTraversalDepth int

	// PlanetAwareFarPlane toggles the origin-facing far plane substitution
	// in frustum culling; disabling it falls back to the conventional
	// projective far plane.
	PlanetAwareFarPlane bool

	// FetchWorkers is the number of background fetch-task workers.
	FetchWorkers int

	// ShowBoundingBoxes enables the debug bounding-box wireframe overlay.
	ShowBoundingBoxes bool
}

// Default returns the configuration a bare invocation runs with: no API
// key (the caller must supply one), info-level logging, the spec's
// default screen-space-error budget and traversal depth, the
// planet-aware far plane enabled, and 4 fetch workers.
func Default() Config {
	return Config{
		LogLevel:            slog.LevelInfo,
		PixelErrorBudget:    view.PixelErrorBudget,
		MaxTraversalDepth:   20,
		PlanetAwareFarPlane: true,
		FetchWorkers:        4,
	}
}

// ParseLogLevel parses a log level name (debug, info, warn, error),
// case-insensitively, defaulting to info for an empty string.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Validate reports whether the configuration is usable: an API key is
// required, the SSE budget and traversal depth must be positive, and at
// least one fetch worker is needed to make progress.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.PixelErrorBudget <= 0 {
		return fmt.Errorf("pixel error budget must be positive, got %v", c.PixelErrorBudget)
	}
	if c.MaxTraversalDepth <= 0 {
		return fmt.Errorf("max traversal depth must be positive, got %d", c.MaxTraversalDepth)
	}
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("fetch workers must be positive, got %d", c.FetchWorkers)
	}
	return nil
}
