package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seatwheel.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9003, cfg.Port)
	assert.Equal(t, ":9003", cfg.Addr())
	assert.Equal(t, "history.json", cfg.HistoryPath)
	assert.Equal(t, 9, cfg.Layout.Front)
	assert.Equal(t, []int{9, 17}, cfg.Layout.Gaps)
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `port: 8080
names_path: roster.json
history_path: data/history.json
log_level: debug
generation:
  max_attempts: 50
viewers:
  send_buffer: 4
  ping_interval: 5s
layout:
  front: 8
  gaps: [8, 17]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "roster.json", cfg.NamesPath)
	assert.Equal(t, "data/history.json", cfg.HistoryPath)
	assert.Equal(t, 50, cfg.Generation.MaxAttempts)
	assert.Equal(t, 4, cfg.Viewers.SendBuffer)
	assert.Equal(t, 5*time.Second, cfg.Viewers.PingInterval)
	assert.Equal(t, 8, cfg.DisplayLayout().Front)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/seatwheel.yml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(writeConfig(t, "port: [unclosed"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SEATWHEEL_PORT", "7000")
	t.Setenv("SEATWHEEL_HISTORY", "/tmp/h.json")
	t.Setenv("SEATWHEEL_PING_INTERVAL", "1m")

	cfg, err := Load(writeConfig(t, "port: 8080\n"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "/tmp/h.json", cfg.HistoryPath)
	assert.Equal(t, time.Minute, cfg.Viewers.PingInterval)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SEATWHEEL_NAMES=from-dotenv.json\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SEATWHEEL_NAMES") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", cfg.NamesPath)
}

func TestLoad_BadEnvironmentValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SEATWHEEL_PORT", "nine")
	_, err := Load("")
	assert.ErrorContains(t, err, "SEATWHEEL_PORT")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port":         func(c *Config) { c.Port = 0 },
		"names":        func(c *Config) { c.NamesPath = "" },
		"history":      func(c *Config) { c.HistoryPath = "" },
		"attempts":     func(c *Config) { c.Generation.MaxAttempts = 0 },
		"send buffer":  func(c *Config) { c.Viewers.SendBuffer = 0 },
		"ping":         func(c *Config) { c.Viewers.PingInterval = 0 },
		"log level":    func(c *Config) { c.LogLevel = "loud" },
		"layout front": func(c *Config) { c.Layout.Front = 30 },
		"layout gaps":  func(c *Config) { c.Layout.Gaps = []int{} },
		"extra gap":    func(c *Config) { c.Layout.Gaps = []int{3, 9, 17} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
