// Package config loads process configuration. Precedence, lowest to highest:
// struct defaults, an optional YAML file, environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/microblog/service_layer/pkg/logger"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string        `yaml:"host" env:"SERVER_HOST"`
	Port         int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
}

// DatabaseConfig configures the persistence gateway. An empty DSN selects the
// in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

// Config is the full process configuration.
type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Database DatabaseConfig       `yaml:"database"`
	Logging  logger.LoggingConfig `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Logging: logger.LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (or config.yaml when present), then environment overrides.
func Load() (Config, error) {
	cfg := Default()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
