package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/schemadesk/engine/internal/storage/files"
	"github.com/schemadesk/engine/internal/storage/recents"
	"github.com/schemadesk/engine/internal/storage/state"
)

// ErrNoProject is returned when no project root is configured or persisted
var ErrNoProject = errors.New("no project root configured")

// Storage represents the complete storage system: session state, the
// recent-files list and the open project's files
type Storage struct {
	layout  Layout
	state   *state.Store
	recents *recents.Store
	files   *files.Store
	log     zerolog.Logger
	mu      sync.RWMutex
	ready   bool
	closed  bool
}

// New creates a new storage system rooted at dataDir
func New(dataDir string) (*Storage, error) {
	return NewBuilder().WithDataDir(dataDir).Build()
}

// State returns the session state store
func (s *Storage) State() *state.Store {
	return s.state
}

// Recents returns the recent-files store
func (s *Storage) Recents() *recents.Store {
	return s.recents
}

// Files returns the project file store, nil until a project is opened
func (s *Storage) Files() *files.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files
}

// Layout returns the data dir layout
func (s *Storage) Layout() Layout {
	return s.layout
}

// Start opens the state database
func (s *Storage) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}
	if s.closed {
		return fmt.Errorf("storage is closed")
	}

	if err := s.state.Start(ctx); err != nil {
		return fmt.Errorf("failed to start state store: %w", err)
	}

	s.ready = true
	s.log.Info().Str("data_dir", s.layout.Root).Msg("Storage started")
	return nil
}

// Stop closes the state database
func (s *Storage) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping storage...")

	err := s.state.Stop(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to stop state store")
	}

	s.ready = false
	s.closed = true
	s.log.Info().Msg("Storage stopped")

	return err
}

// Ready reports whether the storage is started
func (s *Storage) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready && s.state.Ready()
}

// OpenProject opens the project at root. An empty root falls back to the
// project path persisted by the previous session.
func (s *Storage) OpenProject(ctx context.Context, root string) (*files.Store, error) {
	if root == "" {
		persisted, err := s.state.Get(ctx, state.KeyProjectPath)
		if err != nil {
			var notFound state.KeyNotFoundError
			if errors.As(err, &notFound) {
				return nil, ErrNoProject
			}
			return nil, fmt.Errorf("failed to read project path: %w", err)
		}
		root = persisted
	}

	store, err := files.NewStore(root)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.files = store
	s.mu.Unlock()

	s.log.Info().Str("root", store.Root()).Msg("Project opened")
	return store, nil
}
