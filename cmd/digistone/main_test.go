package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/digistone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// samples writes the generated sample stones into a temporary directory.
func samples(t *testing.T) (cylinder, pebble string) {
	t.Helper()
	dir := t.TempDir()
	_, err := execute(t, "gen", dir, "--cells", "24", "--sectors", "72")
	require.NoError(t, err)
	return filepath.Join(dir, "cylinder.stl"), filepath.Join(dir, "pebble.stl")
}

func TestPreviewMode(t *testing.T) {
	cyl, pebble := samples(t)
	out := t.TempDir()
	stdout, err := execute(t, "-f", cyl, "-f", pebble, "-t", "5", "-o", "1",
		"--angle-step", "5", "--out", out, "--layer-images")
	require.NoError(t, err, stdout)
	for _, name := range []string{meshFile, drawingFile, previewFile, "cylinder_L000.png", "pebble_L000.png"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, stdout, `stone "cylinder": 8 layers, 72 sectors`)
	assert.Contains(t, stdout, `stone "pebble"`)
}

func TestMillMode(t *testing.T) {
	cyl, _ := samples(t)
	out := t.TempDir()
	stdout, err := execute(t, "-f", cyl, "-m", "mill", "-t", "5", "-o", "1", "-n", "2",
		"--angle-step", "5", "--flatten", "--out", out)
	require.NoError(t, err, stdout)
	for _, name := range []string{drawingFile, layoutPlot} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, stdout, "layers requested:      16")
	assert.Contains(t, stdout, "compactization factor:")
}

func TestAssessModeWritesNoFiles(t *testing.T) {
	cyl, _ := samples(t)
	out := t.TempDir()
	stdout, err := execute(t, "-f", cyl, "-m", "assessproductionvolume", "-t", "5", "-o", "1",
		"--angle-step", "10", "--out", out)
	require.NoError(t, err, stdout)
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, stdout, "volume efficiency:")
}

func TestSkipsFailedStone(t *testing.T) {
	cyl, _ := samples(t)
	out := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing.stl")
	stdout, err := execute(t, "-f", missing, "-f", cyl, "-t", "5", "-o", "1",
		"--angle-step", "10", "--out", out)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "skipping stone")
	_, err = os.Stat(filepath.Join(out, meshFile))
	assert.NoError(t, err)
}

func TestTooThinProducesNothing(t *testing.T) {
	cyl, _ := samples(t)
	out := filepath.Join(t.TempDir(), "out")
	_, err := execute(t, "-f", cyl, "-t", "30", "-o", "1", "--out", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too thin")
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestConfigFileWithOverrides(t *testing.T) {
	cyl, _ := samples(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "job.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
sheet_thickness = 5.0
overlap = 1.0
angle_step = 10.0
mode = "assess"
production = 3
`), 0o644))
	stdout, err := execute(t, "-c", cfgPath, "-f", cyl, "-n", "1", "--out", dir)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "layers requested:      8")
}

func TestInvalidFlags(t *testing.T) {
	cyl, _ := samples(t)
	_, err := execute(t, "-f", cyl, "-t", "5", "-m", "carve")
	assert.Error(t, err)
	_, err = execute(t, "-f", cyl, "-t", "5", "--angle-step", "7")
	assert.ErrorIs(t, err, digistone.ErrInvalidConfig)
	_, err = execute(t, "-t", "5")
	assert.Error(t, err)
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFromFlags(2, false))
	assert.Equal(t, slog.LevelInfo, levelFromFlags(1, false))
	assert.Equal(t, slog.LevelError, levelFromFlags(0, true))
	assert.Equal(t, slog.LevelWarn, levelFromFlags(0, false))
}
