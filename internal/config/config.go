// Package config loads blob-mcp settings from YAML files and provides
// defaults for everything that is not set.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/blob-tools-mcp/internal/blob"
	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// EnvPath names the environment variable consulted for the config file path
// when no --config flag is given.
const EnvPath = "BLOB_MCP_CONFIG"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Labeling parameters
	Labeling struct {
		// MaxLabel is the largest label value a labeling run may allocate
		MaxLabel int `yaml:"maxLabel"`
	} `yaml:"labeling"`

	// Attribute extraction parameters
	Attributes struct {
		// Moments is "origin" or "central"
		Moments string `yaml:"moments"`
	} `yaml:"attributes"`

	// Marker rendering parameters
	Render struct {
		// MarkerLength is the center-to-endpoint distance in pixels
		MarkerLength float64 `yaml:"markerLength"`

		// Segment draws the whole orientation segment
		Segment bool `yaml:"segment"`
	} `yaml:"render"`

	// Binarization parameters
	Threshold struct {
		// Level is the default global threshold for gray inputs
		Level int `yaml:"level"`
	} `yaml:"threshold"`

	// Logging parameters
	Log struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Labeling.MaxLabel = blob.DefaultMaxLabel
	cfg.Attributes.Moments = blob.OriginMoments.String()
	cfg.Render.MarkerLength = blob.DefaultMarkerLength
	cfg.Render.Segment = false
	cfg.Threshold.Level = 128
	cfg.Log.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
// Values missing from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate checks every field against the range the pipeline accepts.
func (c *Config) Validate() error {
	if c.Labeling.MaxLabel < 1 || c.Labeling.MaxLabel > raster.MaxSampleLevel {
		return fmt.Errorf("%w: labeling.maxLabel %d not in [1, %d]", ErrInvalid, c.Labeling.MaxLabel, raster.MaxSampleLevel)
	}
	if _, err := blob.ParseMoments(c.Attributes.Moments); err != nil {
		return fmt.Errorf("%w: attributes.moments: %v", ErrInvalid, err)
	}
	if c.Render.MarkerLength < 0 {
		return fmt.Errorf("%w: render.markerLength %g is negative", ErrInvalid, c.Render.MarkerLength)
	}
	if c.Threshold.Level < 0 || c.Threshold.Level > raster.MaxSampleLevel {
		return fmt.Errorf("%w: threshold.level %d not in [0, %d]", ErrInvalid, c.Threshold.Level, raster.MaxSampleLevel)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// Settings converts the configuration to blob analysis settings.
// Call Validate first; an unknown moment convention falls back to origin.
func (c *Config) Settings() blob.Settings {
	m, _ := blob.ParseMoments(c.Attributes.Moments)
	return blob.Settings{
		MaxLabel:     c.Labeling.MaxLabel,
		Moments:      m,
		MarkerLength: c.Render.MarkerLength,
		Segment:      c.Render.Segment,
	}
}

// ParseLevel maps debug, info, warn (or warning) and error to slog levels.
// Matching is case-insensitive.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ResolvePath returns flagPath if set, otherwise the value of EnvPath.
// An empty result means no config file was requested.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvPath)
}
