package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "safetasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:42070", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, time.Second, cfg.Pomodoro.Tick)
	assert.Equal(t, StatsConfig{DefaultPeriodDays: 7, DailyDays: 7, WeeklyWeeks: 4, HeatmapDays: 84}, cfg.Stats)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9000"
storage:
  driver: Badger
  data_dir: /var/lib/safetasks
log:
  level: debug
  format: text
pomodoro:
  tick: 250ms
stats:
  heatmap_days: 28
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/safetasks", cfg.Storage.DataDir)
	assert.Equal(t, 250*time.Millisecond, cfg.Pomodoro.Tick)
	assert.Equal(t, 28, cfg.Stats.HeatmapDays)
	assert.Equal(t, 7, cfg.Stats.DailyDays)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "storage:\n  driver: sqlite\n  data_dir: from-file\n")
	t.Setenv("SAFETASKS_DATA_DIR", "from-env")
	t.Setenv("SAFETASKS_TICK", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "from-env", cfg.Storage.DataDir)
	assert.Equal(t, 2*time.Second, cfg.Pomodoro.Tick)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	_, err := Load(writeFile(t, "storage:\n  driver: redis\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "log:\n  level: loud\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "server: [\n"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "WARN", line["level"])
}
