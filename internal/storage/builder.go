package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/storage/recents"
	"github.com/schemadesk/engine/internal/storage/state"
)

// Builder provides a fluent interface for building Storage instances
type Builder struct {
	config *Config
	log    zerolog.Logger
}

// NewBuilder creates a new Storage builder
func NewBuilder() *Builder {
	return &Builder{
		config: DefaultConfig(),
		log:    logger.WithComponent("storage.builder"),
	}
}

// WithConfig sets the configuration
func (b *Builder) WithConfig(config *Config) *Builder {
	b.config = config
	return b
}

// WithDataDir sets the data directory (convenience method)
func (b *Builder) WithDataDir(dataDir string) *Builder {
	if b.config == nil {
		b.config = DefaultConfig()
	}
	b.config.DataDir = dataDir
	return b
}

// WithProjectRoot sets the project folder opened by BuildAndStart
func (b *Builder) WithProjectRoot(root string) *Builder {
	if b.config == nil {
		b.config = DefaultConfig()
	}
	b.config.ProjectRoot = root
	return b
}

// Build creates the Storage instance without opening anything
func (b *Builder) Build() (*Storage, error) {
	if b.config == nil {
		b.config = DefaultConfig()
	}

	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	layout := NewLayout(b.config.DataDir)
	if err := layout.Prepare(); err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}

	recentStore, err := recents.NewStore(layout.Recents)
	if err != nil {
		return nil, fmt.Errorf("failed to create recents store: %w", err)
	}

	storage := &Storage{
		layout:  layout,
		state:   state.NewStore(layout.State),
		recents: recentStore,
		log:     logger.WithComponent("storage"),
	}

	b.log.Info().
		Str("data_dir", b.config.DataDir).
		Msg("Storage built successfully")

	return storage, nil
}

// BuildAndStart creates and starts the Storage instance, then opens the
// configured or persisted project
func (b *Builder) BuildAndStart(ctx context.Context) (*Storage, error) {
	storage, err := b.Build()
	if err != nil {
		return nil, err
	}

	if err := storage.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start storage: %w", err)
	}

	if _, err := storage.OpenProject(ctx, b.config.ProjectRoot); err != nil {
		_ = storage.Stop(ctx)
		return nil, err
	}

	return storage, nil
}
