// Package config содержит логику чтения конфигурации банковского бэк-офиса.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации банковского бэк-офиса.
type Config struct {
	RunAddress        string `env:"RUN_ADDRESS"`
	DataDir           string `env:"DATA_DIR"`
	SessionTTLMinutes int    `env:"SESSION_TTL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения. Значения окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDataDir := cfg.DataDir
	envSessionTTL := cfg.SessionTTLMinutes

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DataDir, "d", "data", "directory for record files")
	flag.IntVar(&cfg.SessionTTLMinutes, "t", 30, "session idle timeout in minutes")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDataDir != "" {
		cfg.DataDir = envDataDir
	}
	if envSessionTTL != 0 {
		cfg.SessionTTLMinutes = envSessionTTL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.SessionTTLMinutes <= 0 {
		cfg.SessionTTLMinutes = 30
	}

	return cfg, nil
}
