package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemadesk/engine/internal/config"
	"github.com/schemadesk/engine/internal/explorer"
	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/metrics"
	"github.com/schemadesk/engine/internal/schemafield"
	"github.com/schemadesk/engine/internal/storage"
)

// loadConfig reads the config file and environment, then applies flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if v, _ := flags.GetString("project"); v != "" {
		cfg.Project.Root = v
	}
	if v, _ := flags.GetString("data-dir"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) error {
	return logger.Init(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Rotation:   cfg.Logging.Rotation,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})
}

// project is an opened storage backend and a loaded engine
type project struct {
	storage *storage.Storage
	engine  *explorer.Engine
	load    explorer.Result
}

// openProject starts storage, opens the project root and loads the engine
func openProject(ctx context.Context, cfg *config.Config, m *metrics.ExplorerMetrics) (*project, error) {
	store, err := storage.NewBuilder().
		WithDataDir(cfg.Storage.DataDir).
		WithProjectRoot(cfg.Project.Root).
		BuildAndStart(ctx)
	if err != nil {
		return nil, err
	}

	files := store.Files()
	engine, err := explorer.New(explorer.Options{
		Base:      files.Root(),
		Gateway:   files,
		State:     store.State(),
		Recents:   store.Recents(),
		Metrics:   m,
		Validator: schemafield.NewValidator(),
	})
	if err != nil {
		_ = store.Stop(ctx)
		return nil, err
	}

	res, err := engine.Load(ctx)
	if err != nil {
		_ = store.Stop(ctx)
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	return &project{storage: store, engine: engine, load: res}, nil
}

func (p *project) close(ctx context.Context) {
	if err := p.storage.Stop(ctx); err != nil {
		log := logger.WithComponent("cli")
		log.Warn().Err(err).Msg("Failed to stop storage")
	}
}

// withProject runs fn against a loaded project, logging to stderr so
// command output stays clean
func withProject(cmd *cobra.Command, fn func(ctx context.Context, p *project) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := openProject(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer p.close(ctx)

	return fn(ctx, p)
}
