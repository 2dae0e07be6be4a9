package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/explorer"
	"github.com/schemadesk/engine/internal/storage/files"
)

func TestServer_Lifecycle(t *testing.T) {
	store, err := files.NewStore(t.TempDir())
	require.NoError(t, err)
	engine, err := explorer.New(explorer.Options{Base: store.Root(), Gateway: store})
	require.NoError(t, err)

	bus := eventbus.New()
	defer engine.Attach(bus)()

	server := NewServer(Config{HTTPAddr: "127.0.0.1:0"}, engine, bus, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, server.Start(ctx))
	assert.False(t, server.Ready(), "not ready before the project is loaded")

	_, err = engine.Load(ctx)
	require.NoError(t, err)
	assert.True(t, server.Ready())
	assert.Equal(t, 2, bus.Subscribers())

	resp, err := http.Get("http://" + server.Addr() + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ready", body["status"])

	require.NoError(t, server.Stop(ctx))
	assert.False(t, server.Ready())
	assert.Equal(t, 1, bus.Subscribers())
	require.NoError(t, server.Stop(ctx), "stop is idempotent")
}

func TestServer_NoRestart(t *testing.T) {
	store, err := files.NewStore(t.TempDir())
	require.NoError(t, err)
	engine, err := explorer.New(explorer.Options{Base: store.Root(), Gateway: store})
	require.NoError(t, err)

	server := NewServer(Config{HTTPAddr: "127.0.0.1:0"}, engine, eventbus.New(), nil)
	ctx := context.Background()

	require.NoError(t, server.Start(ctx))
	require.NoError(t, server.Stop(ctx))
	assert.Error(t, server.Start(ctx))
}
