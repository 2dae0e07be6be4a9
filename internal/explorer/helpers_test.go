package explorer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/storage/files"
	"github.com/schemadesk/engine/internal/storage/recents"
	"github.com/schemadesk/engine/internal/storage/state"
)

const testBase = "/projects/demo"

var errInjected = errors.New("injected failure")

// memGateway is an in-memory Gateway with per-path failure injection
type memGateway struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool

	failWrite  map[string]error
	failDelete map[string]error
	failRename map[string]error

	calls []string
}

func newMemGateway() *memGateway {
	return &memGateway{
		files:      map[string][]byte{},
		dirs:       map[string]bool{},
		failWrite:  map[string]error{},
		failDelete: map[string]error{},
		failRename: map[string]error{},
	}
}

// withFile stores a data file and its config, creating parent folders
func (g *memGateway) withFile(p string) *memGateway {
	g.files[p] = []byte("[]")
	g.files[filetree.ConfigPath(p)] = []byte(`{"type":"array","config":{},"fieldSchema":{"type":"object","config":{},"fields":[]}}`)
	for dir := filetree.ParentPath(p); dir != ""; dir = filetree.ParentPath(dir) {
		g.dirs[dir] = true
	}
	return g
}

func (g *memGateway) withDir(p string) *memGateway {
	g.dirs[p] = true
	return g
}

func (g *memGateway) has(p string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.files[p]
	return ok
}

func (g *memGateway) content(p string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return string(g.files[p])
}

func (g *memGateway) ReadFile(ctx context.Context, p string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "read "+p)
	data, ok := g.files[p]
	if !ok {
		return nil, files.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (g *memGateway) WriteFile(ctx context.Context, p string, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "write "+p)
	if err := g.failWrite[p]; err != nil {
		return err
	}
	g.files[p] = append([]byte(nil), data...)
	return nil
}

func (g *memGateway) DeleteFile(ctx context.Context, p string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "delete "+p)
	if err := g.failDelete[p]; err != nil {
		return err
	}
	if _, ok := g.files[p]; !ok {
		return files.ErrNotFound
	}
	delete(g.files, p)
	return nil
}

func (g *memGateway) RenameFile(ctx context.Context, src, dst string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "rename "+src+" "+dst)
	if err := g.failRename[src]; err != nil {
		return err
	}
	data, ok := g.files[src]
	if !ok {
		return files.ErrNotFound
	}
	if _, exists := g.files[dst]; exists {
		return files.ErrExists
	}
	delete(g.files, src)
	g.files[dst] = data
	return nil
}

func (g *memGateway) ListTree(ctx context.Context, root string) ([]filetree.Entry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []filetree.Entry
	for d := range g.dirs {
		if root == "" || strings.HasPrefix(d, root) {
			out = append(out, filetree.Entry{Path: d, IsDir: true})
		}
	}
	for f := range g.files {
		if root == "" || strings.HasPrefix(f, root) {
			out = append(out, filetree.Entry{Path: f})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// memState is an in-memory StateStore
type memState struct {
	mu   sync.Mutex
	vals map[string]string
}

func newMemState() *memState {
	return &memState{vals: map[string]string{}}
}

func (s *memState) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vals[key]
	if !ok {
		return "", state.KeyNotFoundError{Key: key}
	}
	return v, nil
}

func (s *memState) Set(ctx context.Context, key, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = val
	return nil
}

func (s *memState) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vals, key)
	return nil
}

func (s *memState) pointer() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vals[state.KeyFilePath]
	return v, ok
}

// memRecents is an in-memory RecentsStore
type memRecents struct {
	entries []recents.Entry
}

func (r *memRecents) List() []recents.Entry {
	return append([]recents.Entry(nil), r.entries...)
}

func (r *memRecents) Save(entries []recents.Entry) error {
	r.entries = append([]recents.Entry(nil), entries...)
	return nil
}

type fixture struct {
	engine  *Engine
	gateway *memGateway
	state   *memState
	recents *memRecents
}

// newFixture builds a loaded engine whose new files are named n1.json, n2.json, ...
func newFixture(t *testing.T, gw *memGateway) *fixture {
	t.Helper()

	f := &fixture{gateway: gw, state: newMemState(), recents: &memRecents{}}
	f.engine = f.build(t)
	return f
}

func (f *fixture) build(t *testing.T) *Engine {
	t.Helper()

	n := 0
	engine, err := New(Options{
		Base:    testBase,
		Gateway: f.gateway,
		State:   f.state,
		Recents: f.recents,
		NewName: func() string {
			n++
			return "n" + string(rune('0'+n)) + ".json"
		},
	})
	require.NoError(t, err)

	_, err = engine.Load(context.Background())
	require.NoError(t, err)
	return engine
}

func recentPaths(s Session) []string {
	out := make([]string, len(s.Recent))
	for i, n := range s.Recent {
		out[i] = n.CurrentPath
	}
	return out
}

func currentPath(s Session) string {
	if s.Current == nil {
		return ""
	}
	return s.Current.CurrentPath
}
