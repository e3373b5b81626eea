package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"safetasks/internal/stats"
	"safetasks/internal/storage"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Pomodoro PomodoroConfig `yaml:"pomodoro" json:"pomodoro"`
	Stats    StatsConfig    `yaml:"stats" json:"stats"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr" env:"SAFETASKS_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"SAFETASKS_SHUTDOWN_TIMEOUT"`
}

type StorageConfig struct {
	// Driver:
	//   "file" | "badger" | "sqlite" | "memory"
	Driver  string `yaml:"driver" json:"driver" env:"SAFETASKS_STORAGE"`
	DataDir string `yaml:"data_dir" json:"data_dir" env:"SAFETASKS_DATA_DIR"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" env:"SAFETASKS_LOG_LEVEL"`
	Format string `yaml:"format" json:"format" env:"SAFETASKS_LOG_FORMAT"`
}

type PomodoroConfig struct {
	Tick time.Duration `yaml:"tick" json:"tick" env:"SAFETASKS_TICK"`
}

type StatsConfig struct {
	DefaultPeriodDays int `yaml:"default_period_days" json:"default_period_days"`
	DailyDays         int `yaml:"daily_days" json:"daily_days"`
	WeeklyWeeks       int `yaml:"weekly_weeks" json:"weekly_weeks"`
	HeatmapDays       int `yaml:"heatmap_days" json:"heatmap_days"`
}

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = "127.0.0.1:42070"
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
}

func (s *StorageConfig) ApplyDefaults() {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	if s.Driver == "" {
		s.Driver = storage.DriverFile
	}
	if s.DataDir == "" {
		s.DataDir = "data"
	}
}

func (l *LogConfig) ApplyDefaults() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	if l.Format == "" {
		l.Format = "json"
	}
}

func (p *PomodoroConfig) ApplyDefaults() {
	if p.Tick <= 0 {
		p.Tick = time.Second
	}
}

func (s *StatsConfig) ApplyDefaults() {
	if s.DefaultPeriodDays <= 0 {
		s.DefaultPeriodDays = 7
	}
	if s.DailyDays <= 0 {
		s.DailyDays = 7
	}
	if s.WeeklyWeeks <= 0 {
		s.WeeklyWeeks = 4
	}
	if s.HeatmapDays <= 0 {
		s.HeatmapDays = 84
	}
}

func (s StatsConfig) Window() stats.Window {
	return stats.Window{
		PeriodDays:  s.DefaultPeriodDays,
		DailyDays:   s.DailyDays,
		WeeklyWeeks: s.WeeklyWeeks,
		HeatmapDays: s.HeatmapDays,
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Log.ApplyDefaults()
	c.Pomodoro.ApplyDefaults()
	c.Stats.ApplyDefaults()
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverBadger, storage.DriverSQLite, storage.DriverMemory:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: want json or text, got %q", c.Log.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Default is the configuration used without a file or environment.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

// Load reads the YAML file at path, overlays SAFETASKS_* environment
// variables and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var r Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, &r); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
