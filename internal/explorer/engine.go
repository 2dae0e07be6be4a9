package explorer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/metrics"
	"github.com/schemadesk/engine/internal/schemafield"
	"github.com/schemadesk/engine/internal/storage/recents"
	"github.com/schemadesk/engine/internal/storage/state"
	"github.com/schemadesk/engine/internal/tracing"
)

// Gateway is durable file storage addressed by root-relative paths.
// Missing files are reported with an error matching fs.ErrNotExist.
type Gateway interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	DeleteFile(ctx context.Context, path string) error
	RenameFile(ctx context.Context, src, dst string) error
	ListTree(ctx context.Context, root string) ([]filetree.Entry, error)
}

// StateStore persists small session pointers across restarts
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, val string) error
	Delete(ctx context.Context, key string) error
}

// RecentsStore persists the recent-files list
type RecentsStore interface {
	List() []recents.Entry
	Save(entries []recents.Entry) error
}

// Options configures an Engine. Base and Gateway are required.
type Options struct {
	// Base is the absolute project root, '/'-separated
	Base      string
	Gateway   Gateway
	State     StateStore
	Recents   RecentsStore
	Metrics   *metrics.ExplorerMetrics
	Validator *schemafield.Validator
	// NewName generates file names for new files
	NewName func() string
}

// Result is the outcome of an operation: the affected node, if any, and the
// notifications it produced in order.
type Result struct {
	Node   *filetree.Node
	Events []eventbus.Event
}

// Session is a snapshot of the editing session
type Session struct {
	Current *filetree.Node   `json:"currentFile"`
	Recent  []*filetree.Node `json:"recentOpenFiles"`
}

// Engine owns the project tree and the session and keeps them consistent
// with storage. All operations are serialized, storage I/O included.
type Engine struct {
	mu sync.Mutex

	base      string
	gateway   Gateway
	state     StateStore
	recents   RecentsStore
	metrics   *metrics.ExplorerMetrics
	validator *schemafield.Validator
	newName   func() string

	tree    *filetree.Node
	current *filetree.Node
	recent  []*filetree.Node
	loaded  bool

	busMu sync.RWMutex
	bus   *eventbus.Bus

	log zerolog.Logger
}

// New creates an engine with an empty tree. Call Load to read the project.
func New(opts Options) (*Engine, error) {
	if opts.Base == "" {
		return nil, fmt.Errorf("project base is required")
	}
	if opts.Gateway == nil {
		return nil, fmt.Errorf("storage gateway is required")
	}

	e := &Engine{
		base:      opts.Base,
		gateway:   opts.Gateway,
		state:     opts.State,
		recents:   opts.Recents,
		metrics:   opts.Metrics,
		validator: opts.Validator,
		newName:   opts.NewName,
		tree:      filetree.NewFolder(opts.Base, ""),
		log:       logger.WithComponent("explorer"),
	}
	if e.validator == nil {
		e.validator = schemafield.NewValidator()
	}
	if e.newName == nil {
		e.newName = func() string { return uuid.NewString() + ".json" }
	}
	return e, nil
}

// Base returns the project root
func (e *Engine) Base() string {
	return e.base
}

// Loaded reports whether Load has completed at least once
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Tree returns a deep copy of the project tree
func (e *Engine) Tree() *filetree.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Clone()
}

// Session returns copies of the current file and the recent files
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Session{
		Current: e.current.Clone(),
		Recent:  make([]*filetree.Node, len(e.recent)),
	}
	for i, n := range e.recent {
		s.Recent[i] = n.Clone()
	}
	return s
}

// Load reads the project tree from storage and restores the session
func (e *Engine) Load(ctx context.Context) (res Result, err error) {
	ctx, done := e.begin(ctx, "load")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	tree, err := e.buildTree(ctx)
	if err != nil {
		return Result{}, err
	}
	e.tree = tree
	e.recent = nil
	e.current = nil

	if e.recents != nil {
		for _, entry := range e.recents.List() {
			if node, ok := filetree.FindFile(e.tree, entry.CurrentPath); ok {
				e.addRecent(node)
			}
		}
	}

	if p, ok := e.persistedPointer(ctx); ok {
		if rel, ok := filetree.RelFromFull(e.base, p); ok {
			if node, ok := filetree.FindFile(e.tree, rel); ok {
				e.current = node
				e.addRecent(node)
			}
		}
	}

	if e.state != nil {
		if err := e.state.Set(ctx, state.KeyProjectPath, e.base); err != nil {
			e.log.Warn().Err(err).Msg("Failed to persist project path")
		}
	}

	e.loaded = true
	e.saveRecents()
	e.updateGauges()

	files, folders := e.tree.Count()
	e.log.Info().
		Str("base", e.base).
		Int("files", files).
		Int("folders", folders).
		Int("recent", len(e.recent)).
		Msg("Project loaded")

	events := []eventbus.Event{eventbus.TreeRefreshed()}
	if e.current != nil {
		events = append(events, eventbus.CurrentFileSet(e.current.Clone()))
	}
	return Result{Node: e.tree.Clone(), Events: e.stamp(events)}, nil
}

// Refresh rebuilds the tree from storage. The session is re-resolved by
// path; untitled files are kept, files gone from storage are dropped.
func (e *Engine) Refresh(ctx context.Context) (res Result, err error) {
	ctx, done := e.begin(ctx, "refresh")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	tree, err := e.buildTree(ctx)
	if err != nil {
		return Result{}, err
	}

	resolve := func(n *filetree.Node) (*filetree.Node, bool) {
		if filetree.IsUntitled(n.CurrentPath) {
			return n, true
		}
		return filetree.FindFile(tree, n.CurrentPath)
	}

	var recent []*filetree.Node
	for _, n := range e.recent {
		if resolved, ok := resolve(n); ok {
			recent = append(recent, resolved)
		}
	}

	prev := e.current
	var current *filetree.Node
	if prev != nil {
		if resolved, ok := resolve(prev); ok {
			current = resolved
		} else if len(recent) > 0 {
			current = recent[0]
		}
	}

	e.tree = tree
	e.recent = recent
	e.current = current

	events := []eventbus.Event{eventbus.TreeRefreshed()}
	if prev != nil && (current == nil || current.CurrentPath != prev.CurrentPath) {
		e.repointAfterRemoval(ctx, current)
		events = append(events, eventbus.CurrentFileSet(current.Clone()))
	}

	e.saveRecents()
	e.updateGauges()
	e.log.Debug().Int("recent", len(recent)).Msg("Project tree refreshed")

	return Result{Node: e.tree.Clone(), Events: e.stamp(events)}, nil
}

func (e *Engine) buildTree(ctx context.Context) (*filetree.Node, error) {
	entries, err := e.gateway.ListTree(ctx, "")
	if err != nil {
		return nil, StorageError{Op: "list", Path: e.base, Err: err}
	}
	return filetree.Build(e.base, entries), nil
}

// begin starts the span and timer shared by every operation
func (e *Engine) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "explorer", op, attrs...)
	return ctx, func(err error) {
		e.metrics.RecordOperation(op, statusOf(err), time.Since(start))
		tracing.End(span, err)
		if err != nil {
			e.log.Debug().Err(err).Str("op", op).Msg("Operation failed")
		}
	}
}

func statusOf(err error) string {
	var notFound NotFoundError
	var invariant InvariantViolationError
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.As(err, &notFound):
		return metrics.StatusNotFound
	case errors.As(err, &invariant):
		return metrics.StatusConflict
	default:
		return metrics.StatusError
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// stamp marks events as explorer output and counts them
func (e *Engine) stamp(events []eventbus.Event) []eventbus.Event {
	for i := range events {
		events[i] = events[i].From(eventbus.SourceExplorer)
		e.metrics.RecordEvent(string(events[i].Type))
	}
	return events
}

func (e *Engine) recentIndex(p string) int {
	for i, n := range e.recent {
		if n.CurrentPath == p {
			return i
		}
	}
	return -1
}

func (e *Engine) addRecent(n *filetree.Node) {
	if e.recentIndex(n.CurrentPath) < 0 {
		e.recent = append(e.recent, n)
	}
}

func (e *Engine) removeRecent(p string) {
	if i := e.recentIndex(p); i >= 0 {
		e.recent = append(e.recent[:i:i], e.recent[i+1:]...)
	}
}

// fallbackCurrent replaces a removed current file with the first remaining
// recent file, or nil. It reports whether the selection changed.
func (e *Engine) fallbackCurrent(ctx context.Context, removed string) bool {
	if e.current == nil || e.current.CurrentPath != removed {
		return false
	}
	e.current = nil
	if len(e.recent) > 0 {
		e.current = e.recent[0]
	}
	e.repointAfterRemoval(ctx, e.current)
	return true
}

// repointAfterRemoval moves the persisted pointer off a file that left the
// session. An untitled replacement has no path to persist, so the pointer is
// cleared rather than left naming the removed file.
func (e *Engine) repointAfterRemoval(ctx context.Context, n *filetree.Node) {
	if n != nil && filetree.IsUntitled(n.CurrentPath) {
		n = nil
	}
	e.persistPointer(ctx, n)
}

func (e *Engine) persistedPointer(ctx context.Context) (string, bool) {
	if e.state == nil {
		return "", false
	}
	p, err := e.state.Get(ctx, state.KeyFilePath)
	if err != nil {
		var notFound state.KeyNotFoundError
		if !errors.As(err, &notFound) {
			e.log.Warn().Err(err).Msg("Failed to read last file pointer")
		}
		return "", false
	}
	return p, p != ""
}

// persistPointer records n as the last opened file. Untitled files are never
// persisted; nil clears the pointer.
func (e *Engine) persistPointer(ctx context.Context, n *filetree.Node) {
	if e.state == nil {
		return
	}
	var err error
	switch {
	case n == nil:
		err = e.state.Delete(ctx, state.KeyFilePath)
	case filetree.IsUntitled(n.CurrentPath):
		return
	default:
		err = e.state.Set(ctx, state.KeyFilePath, n.FullPath)
	}
	if err != nil {
		e.log.Warn().Err(err).Msg("Failed to persist last file pointer")
	}
}

// saveRecents mirrors the saved files of the session to the recents store
func (e *Engine) saveRecents() {
	if e.recents == nil {
		return
	}
	now := time.Now().UTC()
	entries := make([]recents.Entry, 0, len(e.recent))
	for _, n := range e.recent {
		if filetree.IsUntitled(n.CurrentPath) {
			continue
		}
		entries = append(entries, recents.Entry{CurrentPath: n.CurrentPath, FullPath: n.FullPath, OpenedAt: now})
	}
	if err := e.recents.Save(entries); err != nil {
		e.log.Warn().Err(err).Msg("Failed to persist recent files")
	}
}

func (e *Engine) updateGauges() {
	files, folders := e.tree.Count()
	e.metrics.UpdateTree(files, folders)
	e.metrics.UpdateRecentFiles(len(e.recent))
}
