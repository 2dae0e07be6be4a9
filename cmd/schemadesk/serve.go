package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schemadesk/engine/internal/api"
	"github.com/schemadesk/engine/internal/config"
	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/metrics"
	"github.com/schemadesk/engine/internal/tracing"
	"github.com/schemadesk/engine/internal/version"
	"github.com/schemadesk/engine/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project over HTTP and websocket",
	Long: `Load the project and serve the editor API.

HTTP endpoints live under /api/v1, engine notifications are relayed on /ws and
Prometheus metrics are served on a separate address when enabled. Changes made
to the project folder by other programs trigger a tree refresh.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			cfg.Server.HTTPAddr = v
		}
		if err := initLogger(cfg); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}

// serve runs every component until ctx is canceled, then shuts them down
// in reverse order
func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.WithComponent("main")
	log.Info().Str("version", version.Get().Version).Msg("Starting schemadesk")

	tracingCfg := tracing.DefaultTracingConfig()
	tracingCfg.Enabled = cfg.Metrics.TracingEnabled
	tracingCfg.Endpoint = cfg.Metrics.TracingEndpoint
	tracingCfg.ExporterType = cfg.Metrics.TracingExporter
	tracingCfg.ServiceVersion = version.Get().Version
	tracingCfg.Insecure = cfg.Metrics.TracingInsecure
	tracingCfg.ProjectRoot = cfg.Project.Root
	provider, err := tracing.NewProvider(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("failed to create tracing provider: %w", err)
	}

	collector := metrics.NewCollector().WithRuntimeMetrics()
	explorerMetrics := metrics.NewExplorerMetrics(collector)
	apiMetrics := metrics.NewAPIMetrics(collector)

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, collector)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	p, err := openProject(ctx, cfg, explorerMetrics)
	if err != nil {
		if metricsServer != nil {
			_ = metricsServer.Stop(context.Background())
		}
		return err
	}

	bus := eventbus.New()
	detach := p.engine.Attach(bus)

	var fsWatcher *watcher.Watcher
	if cfg.Project.Watch {
		fsWatcher = watcher.New(p.engine.Base(), cfg.Project.WatchDebounce, func(ctx context.Context) error {
			res, err := p.engine.Refresh(ctx)
			if err != nil {
				return err
			}
			return p.engine.Publish(ctx, res)
		}, apiMetrics)
		if err := fsWatcher.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("Project watcher disabled")
			fsWatcher = nil
		}
	}

	server := api.NewServer(api.Config{HTTPAddr: cfg.Server.HTTPAddr}, p.engine, bus, apiMetrics)
	if err := server.Start(ctx); err != nil {
		if fsWatcher != nil {
			_ = fsWatcher.Stop()
		}
		detach()
		p.close(ctx)
		return fmt.Errorf("failed to start api server: %w", err)
	}

	log.Info().
		Str("project", p.engine.Base()).
		Str("addr", server.Addr()).
		Msg("schemadesk is ready")

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop api server")
	}
	if fsWatcher != nil {
		if err := fsWatcher.Stop(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop project watcher")
		}
	}
	detach()
	p.close(stopCtx)
	if metricsServer != nil {
		if err := metricsServer.Stop(stopCtx); err != nil {
			log.Error().Err(err).Msg("Failed to stop metrics server")
		}
	}
	if err := provider.Shutdown(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down tracing")
	}

	log.Info().Msg("Shutdown complete")
	return nil
}
