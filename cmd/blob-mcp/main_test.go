package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/blob-tools-mcp/internal/blob"
	"github.com/ironsheep/blob-tools-mcp/internal/config"
	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// isolate keeps the host environment and the package logger out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvPath, "")
	t.Setenv("BLOB_MCP_LOG_LEVEL", "")
	t.Cleanup(func() { blob.SetLogger(nil) })
}

// writeGray writes a 12x12 PGM with two gray blobs on a dark background.
func writeGray(t *testing.T, dir string) string {
	t.Helper()
	r, err := raster.New(12, 12, 255)
	require.NoError(t, err)
	require.NoError(t, r.Fill(10))
	for i := 1; i <= 3; i++ {
		for j := 1; j <= 3; j++ {
			require.NoError(t, r.Set(i, j, 200))
		}
	}
	for i := 7; i <= 10; i++ {
		for j := 5; j <= 6; j++ {
			require.NoError(t, r.Set(i, j, 220))
		}
	}
	path := filepath.Join(dir, "gray.pgm")
	require.NoError(t, raster.SavePGM(path, r))
	return path
}

// writeBinary thresholds the writeGray image and returns the binary file.
func writeBinary(t *testing.T, dir string) string {
	t.Helper()
	src, err := raster.Load(writeGray(t, dir))
	require.NoError(t, err)
	bin, err := raster.Threshold(src, 128)
	require.NoError(t, err)
	path := filepath.Join(dir, "bin.pgm")
	require.NoError(t, raster.SavePGM(path, bin))
	return path
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCmd(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "blob-tools-mcp dev")
}

func TestRun_Help(t *testing.T) {
	code, out, _ := runCmd(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "analyze")
	assert.Contains(t, out, "BLOB_MCP_CONFIG")
}

func TestRun_UsageErrors(t *testing.T) {
	isolate(t)
	tests := [][]string{
		{"frobnicate"},
		{"label", "only-one.pgm"},
		{"threshold", "in.pgm", "high", "out.pgm"},
		{"analyze", "--moments", "sideways", "in.pgm"},
		{"label", "--no-such-flag", "a", "b"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			code, _, stderr := runCmd(t, args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRun_Pipeline(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	gray := writeGray(t, dir)
	bin := filepath.Join(dir, "bin.pgm")
	labels := filepath.Join(dir, "labels.pgm")
	table := filepath.Join(dir, "objects.txt")
	marked := filepath.Join(dir, "marked.pgm")

	code, out, stderr := runCmd(t, "threshold", gray, "128", bin)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "17 foreground pixels")

	code, out, stderr = runCmd(t, "label", bin, labels)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "2 regions")

	labelRaster, err := raster.Load(labels)
	require.NoError(t, err)
	assert.Len(t, blob.Components(labelRaster), 2)

	code, _, stderr = runCmd(t, "attributes", "--moments", "central", labels, table, marked)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(table)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1 2 2 "), lines[0])

	markedRaster, err := raster.Load(marked)
	require.NoError(t, err)
	v, err := markedRaster.Get(2, 2)
	require.NoError(t, err)
	assert.Equal(t, markedRaster.MaxLevel(), v)
}

func TestRun_LabelColor(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	bin := writeBinary(t, dir)
	out := filepath.Join(dir, "labels.png")

	code, _, stderr := runCmd(t, "label", "--color", bin, out)
	require.Equal(t, 0, code, stderr)
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRun_Analyze(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	gray := writeGray(t, dir)
	markers := filepath.Join(dir, "markers.png")
	colored := filepath.Join(dir, "colored.png")

	code, out, stderr := runCmd(t, "analyze", "--markers", markers, "--labels", colored, gray)
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "9", strings.Fields(lines[0])[4])
	assert.Equal(t, "8", strings.Fields(lines[1])[4])

	for _, p := range []string{markers, colored} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestRun_AnalyzeWithConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	gray := writeGray(t, dir)
	cfgPath := filepath.Join(dir, "blob.yaml")
	cfg := config.DefaultConfig()
	cfg.Threshold.Level = 210
	cfg.Log.Level = "debug"
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	code, out, stderr := runCmd(t, "analyze", "--config", cfgPath, gray)
	require.Equal(t, 0, code, stderr)
	// Only the brighter blob passes 210.
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
	assert.Contains(t, stderr, "labeled raster")

	t.Setenv(config.EnvPath, cfgPath)
	code, out, _ = runCmd(t, "analyze", gray)
	require.Equal(t, 0, code)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestRun_MissingInput(t *testing.T) {
	isolate(t)
	code, _, stderr := runCmd(t, "analyze", filepath.Join(t.TempDir(), "missing.pgm"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error:")
}

func TestRun_CapacityExceeded(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	bin := writeBinary(t, dir)

	code, _, stderr := runCmd(t, "label", "--max-label", "1", bin, filepath.Join(dir, "out.pgm"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "label capacity exceeded")
}

func TestRun_ThresholdTieIsBackground(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "bin.pgm")

	code, _, stderr := runCmd(t, "threshold", writeGray(t, dir), "200", out)
	require.Equal(t, 0, code, stderr)

	bin, err := raster.Load(out)
	require.NoError(t, err)
	// The 200-level blob sits exactly at the threshold; only the 220 blob remains.
	assert.Equal(t, 8, bin.CountNonZero())
}

func TestRun_LabelDeepNeedsPGM(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	bin := writeBinary(t, dir)

	code, _, stderr := runCmd(t, "label", "--max-label", "1000", bin, filepath.Join(dir, "labels.png"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "needs a .pgm path")

	out := filepath.Join(dir, "labels.pgm")
	code, _, stderr = runCmd(t, "label", "--max-label", "1000", bin, out)
	require.Equal(t, 0, code, stderr)
	labels, err := raster.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 1000, labels.MaxLevel())
	assert.Len(t, blob.Components(labels), 2)
}
