package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfigYAML = `name: "Code Vein Fix"
master_enable: true
resolution:
  width: 3440
  height: 1440
fixes:
  pillarbox:
    enable: true
  resolution:
    enable: true
  fov:
    enable: true
    multiplier: 1.5
logging:
  log_file_path: ""
  log_level: "debug"
`

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "codeveinfix.yaml"), []byte(contents), 0o644)
	require.NoError(t, err)
	return dir
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	require.Equal(t, "Code Vein Fix", cfg.Name)
	require.True(t, cfg.MasterEnable)
	require.Equal(t, 3440, cfg.Resolution.Width)
	require.Equal(t, 1440, cfg.Resolution.Height)
	require.True(t, cfg.Fixes.Pillarbox.Enable)
	require.True(t, cfg.Fixes.Resolution.Enable)
	require.True(t, cfg.Fixes.FOV.Enable)
	require.Equal(t, 1.5, cfg.Fixes.FOV.Multiplier)
	require.Equal(t, "debug", cfg.Logging.LogLevel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
}

func TestLoadConfigDefaultsMultiplier(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, "name: x\nmaster_enable: false\n"))
	require.NoError(t, err)
	require.Equal(t, 1.0, cfg.Fixes.FOV.Multiplier)
}

func TestConfig_AspectRatio(t *testing.T) {
	cfg := &Config{}
	cfg.Resolution.Width = 3440
	cfg.Resolution.Height = 1440
	require.InDelta(t, 2.388889, cfg.AspectRatio(), 1e-5)

	cfg.Resolution.Height = 0
	require.Equal(t, float32(0), cfg.AspectRatio())
}

func TestConfig_ReducedResolution(t *testing.T) {
	cfg := &Config{}
	cfg.Resolution.Width = 3440
	cfg.Resolution.Height = 1440
	w, h := cfg.ReducedResolution()
	require.Equal(t, 43, w)
	require.Equal(t, 18, h)
}
