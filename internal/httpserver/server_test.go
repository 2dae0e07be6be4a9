package httpserver

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	server := New("test", "127.0.0.1:0", handler)
	assert.False(t, server.Ready())
	assert.Equal(t, "127.0.0.1:0", server.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, server.Start(ctx))
	require.NoError(t, server.Start(ctx), "second start is a no-op")
	assert.True(t, server.Ready())
	assert.NotEqual(t, "127.0.0.1:0", server.Addr())

	resp, err := http.Get("http://" + server.Addr() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	require.NoError(t, server.Stop(ctx))
	assert.False(t, server.Ready())
	require.NoError(t, server.Stop(ctx), "stopping twice is harmless")
}

func TestServer_AddressInUse(t *testing.T) {
	ctx := context.Background()
	first := New("first", "127.0.0.1:0", http.NotFoundHandler())
	require.NoError(t, first.Start(ctx))
	t.Cleanup(func() { _ = first.Stop(ctx) })

	second := New("second", first.Addr(), http.NotFoundHandler())
	err := second.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second")
	assert.False(t, second.Ready())
}
