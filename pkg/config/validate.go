package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for invalid or inconsistent values.
func Validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("store.backend must be \"file\" or \"sqlite\", got %q", cfg.Store.Backend)
	}

	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path cannot be empty")
	}

	if cfg.Watch.Enabled && cfg.Store.Backend != "file" {
		return fmt.Errorf("watch.enabled requires the file backend, got %q", cfg.Store.Backend)
	}
	if cfg.Watch.DebounceInterval < 0 {
		return fmt.Errorf("watch.debounce_interval cannot be negative")
	}

	if cfg.Backup.Enabled {
		if cfg.Store.Backend != "file" {
			return fmt.Errorf("backup.enabled requires the file backend, got %q", cfg.Store.Backend)
		}
		if _, err := cron.ParseStandard(cfg.Backup.Schedule); err != nil {
			return fmt.Errorf("invalid backup.schedule %q: %w", cfg.Backup.Schedule, err)
		}
		if cfg.Backup.Keep < 1 {
			return fmt.Errorf("backup.keep must be at least 1, got %d", cfg.Backup.Keep)
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid telemetry.logging.level %q", cfg.Telemetry.Logging.Level)
	}

	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid telemetry.logging.format %q", cfg.Telemetry.Logging.Format)
	}

	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.ListenAddress == "" {
		return fmt.Errorf("telemetry.metrics.listen_address cannot be empty when metrics are enabled")
	}

	return nil
}
