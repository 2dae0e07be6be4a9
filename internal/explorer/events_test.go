package explorer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/filetree"
)

// recorder collects the notifications published by the engine
type recorder struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recorder) HandleEvent(ctx context.Context, evt eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if evt.Source == eventbus.SourceExplorer {
		r.events = append(r.events, evt)
	}
	return nil
}

func (r *recorder) types() []eventbus.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return eventTypes(r.events)
}

func attachedFixture(t *testing.T, gw *memGateway) (*fixture, *eventbus.Bus, *recorder) {
	f := newFixture(t, gw)
	bus := eventbus.New()
	t.Cleanup(f.engine.Attach(bus))

	rec := &recorder{}
	t.Cleanup(bus.Subscribe("recorder", rec))
	return f, bus, rec
}

func TestHandleEvent_FileLifecycle(t *testing.T) {
	f, bus, rec := attachedFixture(t, newMemGateway().withDir("docs"))
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, eventbus.NewFileRequested("docs")))
	assert.True(t, f.gateway.has("docs/n1.json"))
	assert.Equal(t, []eventbus.Type{eventbus.RefreshProjectFileTree}, rec.types())

	node, ok := filetree.FindFile(f.engine.Tree(), "docs/n1.json")
	require.True(t, ok)
	require.NoError(t, bus.Publish(ctx, eventbus.CurrentFileSet(node)))

	require.NoError(t, bus.Publish(ctx, eventbus.RenameFileRequested("docs/n1.json", "docs/renamed.json")))
	assert.Equal(t, "docs/renamed.json", currentPath(f.engine.Session()))

	require.NoError(t, bus.Publish(ctx, eventbus.DeleteFileRequested("docs/renamed.json")))
	assert.False(t, f.gateway.has("docs/renamed.json"))
	assert.Nil(t, f.engine.Session().Current)

	assert.Equal(t, []eventbus.Type{
		eventbus.RefreshProjectFileTree,
		eventbus.SetCurrentFile,
		eventbus.RefreshProjectFileTree,
		eventbus.SetCurrentFile,
		eventbus.RefreshProjectFileTree,
		eventbus.SetCurrentFile,
	}, rec.types())
}

func TestHandleEvent_CloseAndRefresh(t *testing.T) {
	f, bus, rec := attachedFixture(t, newMemGateway().withFile("a.json"))
	ctx := context.Background()

	_, err := f.engine.SetCurrentPath(ctx, "a.json")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, eventbus.FileClosed(&filetree.Node{CurrentPath: "a.json"})))
	assert.Empty(t, f.engine.Session().Recent)

	f.gateway.withFile("b.json")
	require.NoError(t, bus.Publish(ctx, eventbus.TreeRefreshed()))
	_, ok := filetree.FindFile(f.engine.Tree(), "b.json")
	assert.True(t, ok)

	assert.Equal(t, []eventbus.Type{
		eventbus.CloseFile,
		eventbus.SetCurrentFile,
		eventbus.RefreshProjectFileTree,
	}, rec.types())
}

func TestHandleEvent_IgnoresOwnEvents(t *testing.T) {
	f, _, _ := attachedFixture(t, newMemGateway().withDir("docs"))

	evt := eventbus.NewFileRequested("docs").From(eventbus.SourceExplorer)
	require.NoError(t, f.engine.HandleEvent(context.Background(), evt))
	assert.False(t, f.gateway.has("docs/n1.json"))
}

func TestHandleEvent_Errors(t *testing.T) {
	f, bus, rec := attachedFixture(t, newMemGateway())
	ctx := context.Background()

	err := bus.Publish(ctx, eventbus.DeleteFileRequested("missing.json"))
	var notFound NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, rec.types())

	err = f.engine.HandleEvent(ctx, eventbus.Event{Type: "UNKNOWN"})
	assert.Error(t, err)
}

func TestAttach_Detach(t *testing.T) {
	f := newFixture(t, newMemGateway().withDir("docs"))
	bus := eventbus.New()

	detach := f.engine.Attach(bus)
	assert.Equal(t, 1, bus.Subscribers())
	detach()
	assert.Equal(t, 0, bus.Subscribers())

	require.NoError(t, bus.Publish(context.Background(), eventbus.NewFileRequested("docs")))
	assert.False(t, f.gateway.has("docs/n1.json"))

	// without a bus, publishing is a no-op
	assert.NoError(t, f.engine.Publish(context.Background(), Result{Events: []eventbus.Event{eventbus.TreeRefreshed()}}))
}
