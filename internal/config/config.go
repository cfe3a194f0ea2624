// Package config loads server settings from defaults, an optional YAML
// file and METADIFF_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds server settings.
type Config struct {
	Port           string `yaml:"port" validate:"required,numeric"`
	UploadDir      string `yaml:"upload_dir" validate:"required"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" validate:"min=1024"`
	LogLevel       string `yaml:"log_level" validate:"oneof=debug info warn error"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:           "8888",
		UploadDir:      "static/uploads",
		MaxUploadBytes: 16 * 1024 * 1024,
		LogLevel:       "info",
		MetricsEnabled: true,
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("METADIFF_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("METADIFF_UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("METADIFF_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid METADIFF_MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("METADIFF_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("METADIFF_METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METADIFF_METRICS_ENABLED: %w", err)
		}
		c.MetricsEnabled = b
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
