package client

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadesk/engine/internal/api"
	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/explorer"
	"github.com/schemadesk/engine/internal/schemafield"
	"github.com/schemadesk/engine/internal/storage/files"
	"github.com/schemadesk/engine/internal/test"
)

type testServer struct {
	client  *Client
	project string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	project := test.Project(t, map[string]string{"docs/a.json": "[]"})
	test.WriteSchema(t, project, "docs/a.json",
		schemafield.NewArray(schemafield.NewString().Setup(map[string]any{"maxLen": 5})))

	store, err := files.NewStore(project)
	require.NoError(t, err)
	engine, err := explorer.New(explorer.Options{
		Base:      store.Root(),
		Gateway:   store,
		Validator: schemafield.NewValidator(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = engine.Load(ctx)
	require.NoError(t, err)

	bus := eventbus.New()
	t.Cleanup(engine.Attach(bus))

	server := api.NewServer(api.Config{HTTPAddr: "127.0.0.1:0"}, engine, bus, nil)
	require.NoError(t, server.Start(ctx))
	t.Cleanup(func() { _ = server.Stop(context.Background()) })

	c, err := NewClient(server.Addr(), WithTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &testServer{client: c, project: project}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("ftp://localhost:8080")
	assert.Error(t, err)

	c, err := NewClient("localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/tree", c.endpoint("/api/v1/tree", nil))
	assert.NotNil(t, c.Files)
	assert.NotNil(t, c.Session)
	assert.NotNil(t, c.Events)
}

func TestClient_Health(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	require.NoError(t, ts.client.HealthCheck(ctx))

	ready, err := ts.client.ReadinessCheck(ctx)
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestClient_FileLifecycle(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()
	files := ts.client.Files

	tree, err := files.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "docs", tree.Children[0].CurrentPath)

	node, err := files.Create(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", filepath.ToSlash(filepath.Dir(node.CurrentPath)))

	renamed, err := files.Rename(ctx, node.CurrentPath, "docs/b.json")
	require.NoError(t, err)
	assert.Equal(t, "docs/b.json", renamed.CurrentPath)
	test.AssertFileExists(t, ts.project, "docs/b.config.json")

	require.NoError(t, files.SaveData(ctx, "docs/a.json", json.RawMessage(`["hi"]`)))
	data, err := files.Data(ctx, "docs/a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `["hi"]`, string(data))

	schema, err := files.JSONSchema(ctx, "docs/a.json")
	require.NoError(t, err)
	assert.Equal(t, "array", schema["type"])

	config, err := files.Config(ctx, "docs/a.json")
	require.NoError(t, err)
	assert.Contains(t, string(config), `"array"`)

	defaults, err := files.Defaults(ctx, "docs/b.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(defaults))

	require.NoError(t, files.Delete(ctx, "docs/b.json"))
	test.AssertFileNotExists(t, ts.project, "docs/b.json")

	tree, err = files.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, tree.Children[0].Children, 1)
}

func TestClient_Errors(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	err := ts.client.Files.Delete(ctx, "docs/missing.json")
	var sdkErr *Error
	require.True(t, errors.As(err, &sdkErr))
	assert.True(t, sdkErr.IsNotFound())
	assert.Equal(t, 404, sdkErr.Status)

	err = ts.client.Files.SaveData(ctx, "docs/a.json", json.RawMessage(`["too long"]`))
	require.True(t, errors.As(err, &sdkErr))
	assert.True(t, sdkErr.IsValidation())

	_, err = ts.client.Files.Rename(ctx, "docs/a.json", "docs/a.json")
	require.True(t, errors.As(err, &sdkErr))
	assert.True(t, sdkErr.IsConflict())
}

func TestClient_Session(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	session, err := ts.client.Session.Open(ctx, "docs/a.json")
	require.NoError(t, err)
	assert.Equal(t, "docs/a.json", session.CurrentPath())

	session, err = ts.client.Session.Get(ctx)
	require.NoError(t, err)
	require.Len(t, session.Recent, 1)

	session, err = ts.client.Session.Close(ctx, "docs/a.json")
	require.NoError(t, err)
	assert.Empty(t, session.CurrentPath())
	assert.Empty(t, session.Recent)
}

func receiveEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case evt, ok := <-sub.Events():
		require.True(t, ok, "subscription closed: %v", sub.Err())
		return evt
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestClient_Subscribe(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	sub, err := ts.client.Events.Subscribe(ctx, WithTypes(eventbus.RefreshProjectFileTree))
	require.NoError(t, err)
	defer sub.Close()

	// give the hub time to register the connection and the filter
	require.Eventually(t, func() bool {
		_, err := ts.client.Files.Create(ctx, "docs")
		if err != nil {
			return false
		}
		select {
		case evt := <-sub.Events():
			return evt.Type == eventbus.RefreshProjectFileTree
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	// intents run through the engine and the resulting notification comes back
	require.NoError(t, sub.Send(eventbus.DeleteFileRequested("docs/a.json")))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(ts.project, "docs", "a.json"))
		return os.IsNotExist(err)
	}, 5*time.Second, 10*time.Millisecond)
	evt := receiveEvent(t, sub)
	assert.Equal(t, eventbus.RefreshProjectFileTree, evt.Type)
	assert.Equal(t, eventbus.SourceExplorer, evt.Source)

	require.NoError(t, sub.Send(eventbus.DeleteFileRequested("docs/a.json")))
	select {
	case err := <-sub.Errors():
		var sdkErr *Error
		require.True(t, errors.As(err, &sdkErr))
		assert.True(t, sdkErr.IsNotFound())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for intent error")
	}

	assert.Error(t, sub.Send(Event{Type: "BOGUS"}))

	require.NoError(t, sub.Close())
	assert.ErrorIs(t, sub.Send(eventbus.TreeRefreshed()), ErrSubscriptionClosed)
}
