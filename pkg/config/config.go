// Package config loads dictload settings from an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/japaniel/dictload/pkg/dictionary"
)

// Config is the root configuration of a conversion run.
type Config struct {
	Load LoadConfig `yaml:"load"`
	Log  LogConfig  `yaml:"log"`
}

// LoadConfig holds pipeline settings. Workers of 0 means one per CPU.
type LoadConfig struct {
	Workers       int    `yaml:"workers"        env:"DICTLOAD_WORKERS"        env-default:"0"`
	StripMarkup   bool   `yaml:"strip_markup"   env:"DICTLOAD_STRIP_MARKUP"   env-default:"false"`
	ProgressEvery int    `yaml:"progress_every" env:"DICTLOAD_PROGRESS_EVERY" env-default:"3000"`
	BufferSize    int    `yaml:"buffer_size"    env:"DICTLOAD_BUFFER_SIZE"    env-default:"0"`
	Format        string `yaml:"format"         env:"DICTLOAD_FORMAT"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"DICTLOAD_LOG_LEVEL"  env-default:"debug"`
	Format string `yaml:"format" env:"DICTLOAD_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// An empty path loads from ENV + defaults only; a path that does not exist is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Load.Workers < 0 {
		return fmt.Errorf("load.workers must be >= 0, got %d", c.Load.Workers)
	}
	if c.Load.ProgressEvery < 1 {
		return fmt.Errorf("load.progress_every must be >= 1, got %d", c.Load.ProgressEvery)
	}
	if c.Load.BufferSize < 0 {
		return fmt.Errorf("load.buffer_size must be >= 0, got %d", c.Load.BufferSize)
	}
	if _, err := dictionary.ParseFormat(c.Load.Format); err != nil {
		return fmt.Errorf("load.format: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}
