package main

import (
	"context"
	"fmt"
	"log/slog"

	"rulegate/pkg/config"
	"rulegate/pkg/rules"
	"rulegate/pkg/rules/store"
	"rulegate/pkg/telemetry/logging"
)

// runtimeEnv is the shared setup for every subcommand: configuration,
// logger, and the repository over its configured backend.
type runtimeEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   *rules.Repository
	store  store.DocumentStore
}

// close releases backend resources.
func (env *runtimeEnv) close() {
	if err := env.store.Close(); err != nil {
		env.logger.Warn("failed to close document store", "error", err)
	}
}

// setupRuntime loads configuration and constructs the repository.
func setupRuntime(ctx context.Context) (*runtimeEnv, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	repo, err := rules.NewRepository(ctx, st, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &runtimeEnv{cfg: cfg, logger: logger, repo: repo, store: st}, nil
}

// openStore constructs the configured persistence backend.
func openStore(cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.Store.Backend {
	case "file":
		return store.NewFileStore(cfg.Store.Path), nil
	case "sqlite":
		return store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Store.Path,
			MaxOpenConns: cfg.Store.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Store.SQLite.MaxIdleConns,
			WALMode:      cfg.Store.SQLite.WALMode == nil || *cfg.Store.SQLite.WALMode,
			BusyTimeout:  cfg.Store.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}
}
