package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"rulegate/pkg/mcpserver"
	"rulegate/pkg/rules"
	"rulegate/pkg/rules/backup"
	"rulegate/pkg/rules/engine"
	"rulegate/pkg/telemetry/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rule evaluation MCP server on stdio",
	Long: `Serve runs the MCP server over stdin/stdout. All tool traffic uses
stdout, so logs go to stderr.

The server loads the rule document from the configured backend, falling
back to the built-in default rules when no document exists yet.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	env, err := setupRuntime(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	logger := env.logger
	cfg := env.cfg

	var engineMetrics *metrics.EngineMetrics
	if cfg.Telemetry.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		engineMetrics = metrics.NewEngineMetrics(cfg.Telemetry.Metrics.Namespace, registry)

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsServer := &http.Server{
			Addr:              cfg.Telemetry.Metrics.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics listener starting", "address", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	eng := engine.New(env.repo, logger, engineMetrics)

	if cfg.Watch.Enabled {
		watcher := rules.NewDocumentWatcher(env.repo, cfg.Store.Path, cfg.Watch.DebounceInterval, logger)
		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("document watcher stopped", "error", err)
			}
		}()
	}

	if cfg.Backup.Enabled {
		snapshotter := backup.NewSnapshotter(cfg.Store.Path, cfg.Backup.Dir, cfg.Backup.Keep, logger)
		scheduler := backup.NewScheduler(snapshotter, cfg.Backup.Schedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	srv := mcpserver.NewServer(cfg.Server.Name, Version, env.repo, eng)

	logger.Info("rulegate MCP server starting",
		"name", cfg.Server.Name,
		"version", Version,
		"backend", cfg.Store.Backend,
	)

	return server.ServeStdio(srv)
}
