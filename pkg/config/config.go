package config

import "time"

// Config is the root configuration structure for rulegate.
type Config struct {
	// Server contains identity settings for the MCP server.
	Server ServerConfig `yaml:"server"`

	// Store contains persistence settings for the rule document.
	Store StoreConfig `yaml:"store"`

	// Watch enables reloading when the backing document changes on disk
	// (file backend only).
	Watch WatchConfig `yaml:"watch"`

	// Backup contains scheduled document backup settings.
	Backup BackupConfig `yaml:"backup"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains identity settings for the MCP server.
type ServerConfig struct {
	// Name is the server name advertised during the MCP handshake.
	// Default: "rulegate"
	Name string `yaml:"name"`
}

// StoreConfig selects and configures the document persistence backend.
type StoreConfig struct {
	// Backend selects the persistence backend: "file" or "sqlite".
	// Default: "file"
	Backend string `yaml:"backend"`

	// Path is the document location: the JSON file path for the file
	// backend, the database file path for sqlite.
	// Default: "data/rules.json"
	Path string `yaml:"path"`

	// SQLite tunes the sqlite backend; ignored by the file backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig tunes the sqlite persistence backend.
type SQLiteConfig struct {
	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode *bool `yaml:"wal_mode"`

	// BusyTimeout is the wait duration when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// WatchConfig controls out-of-band document reloads.
type WatchConfig struct {
	// Enabled turns the document watcher on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// DebounceInterval is the settle time after a change before the
	// document is reloaded.
	// Default: 200ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// BackupConfig controls scheduled backups of the rule document.
type BackupConfig struct {
	// Enabled turns scheduled backups on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a standard cron expression (e.g. "0 3 * * *").
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// Dir is the directory backups are written to.
	// Default: "data/backups"
	Dir string `yaml:"dir"`

	// Keep is the number of backups retained; older ones are pruned.
	// Default: 10
	Keep int `yaml:"keep"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus listener.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus metrics listener.
type MetricsConfig struct {
	// Enabled starts an HTTP listener exposing /metrics.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the metrics listener address.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Namespace prefixes every metric name.
	// Default: "rulegate"
	Namespace string `yaml:"namespace"`
}
