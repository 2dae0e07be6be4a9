package recents

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/schemadesk/engine/internal/logger"
)

// DefaultFile is the filename of the persisted list
const DefaultFile = "recent_files.json"

// Entry is one recently opened file
type Entry struct {
	CurrentPath string    `json:"currentPath"`
	FullPath    string    `json:"fullPath"`
	OpenedAt    time.Time `json:"openedAt"`
}

// Store keeps the ordered recent-files list in memory and mirrors it to a
// JSON file on every change.
type Store struct {
	mu       sync.RWMutex
	entries  []Entry
	filePath string
	log      zerolog.Logger
}

// NewStore creates a store persisting into dir, loading any existing list
func NewStore(dir string) (*Store, error) {
	s := &Store{
		filePath: filepath.Join(dir, DefaultFile),
		log:      logger.WithComponent("recents"),
	}

	if err := s.load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load recent files: %w", err)
		}
		s.log.Debug().Str("file", s.filePath).Msg("Recent files list does not exist yet")
	}

	return s, nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.filePath
}

// List returns a copy of the entries in order
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Save replaces the list. Duplicate paths keep their first occurrence. On a
// failed flush the previous list stays in effect.
func (s *Store) Save(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.CurrentPath]; dup {
			continue
		}
		seen[e.CurrentPath] = struct{}{}
		next = append(next, e)
	}

	prev := s.entries
	s.entries = next
	if err := s.flush(); err != nil {
		s.entries = prev
		return fmt.Errorf("failed to persist recent files: %w", err)
	}

	s.log.Debug().Int("count", len(next)).Msg("Recent files saved")
	return nil
}

// Clear empties the list
func (s *Store) Clear() error {
	return s.Save(nil)
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal recent files: %w", err)
	}
	s.entries = entries

	s.log.Info().
		Str("file", s.filePath).
		Int("count", len(entries)).
		Msg("Recent files loaded from disk")
	return nil
}

// flush writes the list via a temp file and rename
func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create recents directory: %w", err)
	}

	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recent files: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write recent files: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename recent files: %w", err)
	}
	return nil
}
