// Package watcher refreshes the project tree when files change on disk
// outside the engine.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/metrics"
)

// DefaultDebounce is used when no debounce window is configured
const DefaultDebounce = 200 * time.Millisecond

// RefreshFunc is called once per burst of file system changes
type RefreshFunc func(ctx context.Context) error

// Watcher watches a project root recursively and calls the refresh func
// after changes settle. Dot-directories are not watched.
type Watcher struct {
	root     string
	debounce time.Duration
	refresh  RefreshFunc
	metrics  *metrics.APIMetrics

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	log zerolog.Logger
}

// New creates a watcher for root. It must be started with Start.
func New(root string, debounce time.Duration, refresh RefreshFunc, m *metrics.APIMetrics) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     filepath.FromSlash(root),
		debounce: debounce,
		refresh:  refresh,
		metrics:  m,
		log:      logger.WithComponent("watcher"),
	}
}

// Start adds watches for the root and every visible directory below it
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w.watcher = fsw

	if err := w.addTree(w.root); err != nil {
		_ = fsw.Close()
		return err
	}

	w.done = make(chan struct{})
	w.running = true
	w.wg.Add(1)
	go w.processEvents(ctx)

	w.log.Info().Str("root", w.root).Dur("debounce", w.debounce).Msg("Watching project")
	return nil
}

// Stop closes the watcher and waits for the event loop to exit
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.log.Info().Msg("Watcher stopped")
	return nil
}

// IsRunning reports whether the watcher has been started and not stopped
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.metrics.RecordWatcherEvent(opName(event))
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.log.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
					}
				}
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := w.refresh(ctx); err != nil {
				w.log.Warn().Err(err).Msg("Refresh after file system change failed")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// relevant drops chmod-only events and anything under a dot-path, which
// covers the file store's temporary files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return false
		}
	}
	return true
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func opName(event fsnotify.Event) string {
	switch {
	case event.Has(fsnotify.Create):
		return "create"
	case event.Has(fsnotify.Write):
		return "write"
	case event.Has(fsnotify.Remove):
		return "remove"
	case event.Has(fsnotify.Rename):
		return "rename"
	default:
		return "other"
	}
}
