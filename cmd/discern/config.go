package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"discern/paranoia"
)

// Config is the on-disk TOML configuration. Zero values fall back to
// the extraction defaults, so an empty file is a valid config.
type Config struct {
	SearchRadius  int    `toml:"search_radius"`
	MaxRetries    int    `toml:"max_retries"`
	BatchSize     int    `toml:"batch_size"`
	MinConfidence int    `toml:"min_confidence"`
	CacheMargin   int    `toml:"cache_margin"`
	OutputDir     string `toml:"output_dir"`
	LogLevel      string `toml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		OutputDir: ".",
		LogLevel:  "info",
	}
}

// loadConfig reads a TOML config file. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config file %v: %w", path, err)
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %v: %w", path, err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return cfg, nil
}

func (c Config) paranoiaConfig() paranoia.Config {
	return paranoia.Config{
		SearchRadius:  c.SearchRadius,
		MaxRetries:    c.MaxRetries,
		BatchSize:     c.BatchSize,
		MinConfidence: c.MinConfidence,
		CacheMargin:   c.CacheMargin,
	}
}
