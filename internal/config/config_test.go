package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/blob-tools-mcp/internal/blob"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, blob.DefaultMaxLabel, cfg.Labeling.MaxLabel)
	assert.Equal(t, "origin", cfg.Attributes.Moments)
	assert.Equal(t, float64(blob.DefaultMarkerLength), cfg.Render.MarkerLength)
	assert.Equal(t, blob.DefaultSettings(), cfg.Settings())
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.yaml")
	data := []byte("labeling:\n  maxLabel: 4095\nattributes:\n  moments: central\nrender:\n  segment: true\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4095, cfg.Labeling.MaxLabel)
	assert.Equal(t, "central", cfg.Attributes.Moments)
	assert.True(t, cfg.Render.Segment)
	assert.Equal(t, 128, cfg.Threshold.Level)
	assert.Equal(t, "info", cfg.Log.Level)

	s := cfg.Settings()
	assert.Equal(t, blob.CentralMoments, s.Moments)
	assert.Equal(t, 4095, s.MaxLabel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "labeling: [",
		"max label":     "labeling:\n  maxLabel: 0\n",
		"moments":       "attributes:\n  moments: sideways\n",
		"marker length": "render:\n  markerLength: -2\n",
		"threshold":     "threshold:\n  level: 70000\n",
		"log level":     "log:\n  level: loud\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "blob.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate_WrapsErrInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Labeling.MaxLabel = -3
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blob.yaml")
	cfg := DefaultConfig()
	cfg.Threshold.Level = 90
	cfg.Log.Level = "debug"

	require.NoError(t, SaveConfig(cfg, path))
	back, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/blob.yaml")
	assert.Equal(t, "/tmp/flag.yaml", ResolvePath("/tmp/flag.yaml"))
	assert.Equal(t, "/etc/blob.yaml", ResolvePath(""))

	t.Setenv(EnvPath, "")
	assert.Empty(t, ResolvePath(""))
}
