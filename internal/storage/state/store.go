package state

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/tracing"
)

// Well-known keys
const (
	// KeyFilePath holds the absolute path of the last opened file
	KeyFilePath = "file_path"
	// KeyProjectPath holds the absolute project root
	KeyProjectPath = "project_path"
)

// value is the stored record for a key
type value struct {
	Payload   string
	UpdatedAt time.Time
}

// Store is a small durable key-value store for session pointers, backed by
// a Pebble database.
type Store struct {
	dir   string
	db    *pebble.DB
	log   zerolog.Logger
	mu    sync.RWMutex
	ready bool
}

// NewStore creates a store persisting into dir. Call Start before use.
func NewStore(dir string) *Store {
	return &Store{
		dir: dir,
		log: logger.WithComponent("state"),
	}
}

// Start opens the database
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := pebble.Open(s.dir, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}

	s.db = db
	s.ready = true
	s.log.Info().Str("dir", s.dir).Msg("State store started")
	return nil
}

// Stop flushes and closes the database
func (s *Store) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	s.ready = false
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to close state database")
		return err
	}

	s.log.Info().Msg("State store stopped")
	return nil
}

// Ready returns true if the store is open
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key string) (val string, err error) {
	_, span := tracing.StartSpan(ctx, "state", "get", attribute.String(tracing.AttrStateKey, key))
	defer func() {
		var notFound KeyNotFoundError
		if errors.As(err, &notFound) {
			tracing.End(span, nil)
			return
		}
		tracing.End(span, err)
	}()

	if key == "" {
		return "", InvalidKeyError{Key: key, Reason: "key cannot be empty"}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return "", NotReadyError{}
	}

	raw, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", KeyNotFoundError{Key: key}
		}
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	defer closer.Close()

	v, err := decodeValue(raw)
	if err != nil {
		return "", err
	}
	return v.Payload, nil
}

// Set stores val under key, synced to disk
func (s *Store) Set(ctx context.Context, key, val string) (err error) {
	_, span := tracing.StartSpan(ctx, "state", "set", attribute.String(tracing.AttrStateKey, key))
	defer func() { tracing.End(span, err) }()

	if key == "" {
		return InvalidKeyError{Key: key, Reason: "key cannot be empty"}
	}

	encoded, err := encodeValue(&value{Payload: val, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return NotReadyError{}
	}

	if err := s.db.Set([]byte(key), encoded, pebble.Sync); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	s.log.Debug().Str("key", key).Msg("State updated")
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) (err error) {
	_, span := tracing.StartSpan(ctx, "state", "delete", attribute.String(tracing.AttrStateKey, key))
	defer func() { tracing.End(span, err) }()

	if key == "" {
		return InvalidKeyError{Key: key, Reason: "key cannot be empty"}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return NotReadyError{}
	}

	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	s.log.Debug().Str("key", key).Msg("State cleared")
	return nil
}

// All returns every stored key with its value
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, NotReadyError{}
	}

	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate state: %w", err)
	}
	defer iter.Close()

	out := make(map[string]string)
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := decodeValue(iter.Value())
		if err != nil {
			return nil, err
		}
		out[string(iter.Key())] = v.Payload
	}
	return out, iter.Error()
}

func encodeValue(v *value) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeValue(data []byte) (*value, error) {
	var v value
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return &v, nil
}
