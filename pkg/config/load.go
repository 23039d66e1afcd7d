package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// environment overrides, and validates the result. A missing file is not
// an error: defaults (plus environment overrides) apply.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Run entirely on defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies RULEGATE_* environment variable overrides.
// Environment variables always take precedence over file values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("RULEGATE_SERVER_NAME"); val != "" {
		cfg.Server.Name = val
	}

	if val := os.Getenv("RULEGATE_STORE_BACKEND"); val != "" {
		cfg.Store.Backend = val
	}
	if val := os.Getenv("RULEGATE_STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}

	if val := os.Getenv("RULEGATE_WATCH_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Watch.Enabled = b
		}
	}

	if val := os.Getenv("RULEGATE_BACKUP_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Backup.Enabled = b
		}
	}
	if val := os.Getenv("RULEGATE_BACKUP_SCHEDULE"); val != "" {
		cfg.Backup.Schedule = val
	}
	if val := os.Getenv("RULEGATE_BACKUP_DIR"); val != "" {
		cfg.Backup.Dir = val
	}

	if val := os.Getenv("RULEGATE_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("RULEGATE_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}

	if val := os.Getenv("RULEGATE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("RULEGATE_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}

	if val := os.Getenv("RULEGATE_WATCH_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.DebounceInterval = d
		}
	}
}
