// Package config loads seatd settings from an optional YAML file, a .env
// file and SEATWHEEL_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/seatwheel/seatwheel/internal/display"
)

const envPrefix = "SEATWHEEL_"

// Config holds every tunable of the seatd process.
type Config struct {
	Port        int    `yaml:"port"`
	NamesPath   string `yaml:"names_path"`
	HistoryPath string `yaml:"history_path"`
	ArchivePath string `yaml:"archive_path"` // empty disables the commit archive
	LogLevel    string `yaml:"log_level"`

	Generation GenerationConfig `yaml:"generation"`
	Viewers    ViewersConfig    `yaml:"viewers"`
	Layout     LayoutConfig     `yaml:"layout"`
}

// GenerationConfig bounds the arrangement search.
type GenerationConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// ViewersConfig tunes the websocket side.
type ViewersConfig struct {
	SendBuffer   int           `yaml:"send_buffer"`
	PingInterval time.Duration `yaml:"ping_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	AcceptRate   float64       `yaml:"accept_rate"`
	AcceptBurst  int           `yaml:"accept_burst"`
}

// LayoutConfig describes the display grid.
type LayoutConfig struct {
	Front int   `yaml:"front"`
	Gaps  []int `yaml:"gaps"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:        9003,
		NamesPath:   "names.json",
		HistoryPath: "history.json",
		ArchivePath: "seatwheel.db",
		LogLevel:    "info",
		Generation: GenerationConfig{
			MaxAttempts: 10000,
		},
		Viewers: ViewersConfig{
			SendBuffer:   16,
			PingInterval: 30 * time.Second,
			WriteTimeout: 10 * time.Second,
			AcceptRate:   20,
			AcceptBurst:  40,
		},
		Layout: LayoutConfig{
			Front: display.DefaultLayout.Front,
			Gaps:  append([]int(nil), display.DefaultLayout.Gaps...),
		},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults, .env and the environment apply. A missing .env is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
		return nil
	}

	str("NAMES", &c.NamesPath)
	str("HISTORY", &c.HistoryPath)
	str("ARCHIVE", &c.ArchivePath)
	str("LOG_LEVEL", &c.LogLevel)
	if err := integer("PORT", &c.Port); err != nil {
		return err
	}
	if err := integer("MAX_ATTEMPTS", &c.Generation.MaxAttempts); err != nil {
		return err
	}
	if err := integer("SEND_BUFFER", &c.Viewers.SendBuffer); err != nil {
		return err
	}
	if v, ok := lookup(envPrefix + "PING_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sPING_INTERVAL: %w", envPrefix, err)
		}
		c.Viewers.PingInterval = d
	}
	return nil
}

// Validate rejects settings seatd cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.NamesPath == "" {
		return errors.New("names_path is required")
	}
	if c.HistoryPath == "" {
		return errors.New("history_path is required")
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be positive, got %d", c.Generation.MaxAttempts)
	}
	if c.Viewers.SendBuffer < 1 {
		return fmt.Errorf("viewers.send_buffer must be positive, got %d", c.Viewers.SendBuffer)
	}
	if c.Viewers.PingInterval <= 0 {
		return fmt.Errorf("viewers.ping_interval must be positive, got %s", c.Viewers.PingInterval)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return c.DisplayLayout().Validate()
}

// DisplayLayout converts the layout section.
func (c *Config) DisplayLayout() display.Layout {
	return display.Layout{Front: c.Layout.Front, Gaps: c.Layout.Gaps}
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
}
