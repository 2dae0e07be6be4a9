package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadesk/engine/internal/eventbus"
)

func runHub(t *testing.T) *Hub {
	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func addClient(t *testing.T, hub *Hub, topics ...string) *Client {
	c := &Client{hub: hub, send: make(chan []byte, 4), topics: map[string]bool{}}
	for _, topic := range topics {
		c.topics[topic] = true
	}
	hub.register <- c
	return c
}

func receive(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data := <-c.send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return WSMessage{}
	}
}

func TestHub_RelaysEngineEvents(t *testing.T) {
	hub := runHub(t)
	all := addClient(t, hub)
	refreshOnly := addClient(t, hub, string(eventbus.RefreshProjectFileTree))
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, hub.HandleEvent(ctx, eventbus.CurrentFileSet(nil).From(eventbus.SourceExplorer)))
	require.NoError(t, hub.HandleEvent(ctx, eventbus.TreeRefreshed().From(eventbus.SourceExplorer)))
	// requests from elsewhere are not echoed
	require.NoError(t, hub.HandleEvent(ctx, eventbus.DeleteFileRequested("a.json")))

	msg := receive(t, all)
	assert.Equal(t, string(eventbus.SetCurrentFile), msg.Topic)
	msg = receive(t, all)
	assert.Equal(t, string(eventbus.RefreshProjectFileTree), msg.Topic)

	msg = receive(t, refreshOnly)
	assert.Equal(t, MessageEvent, msg.Type)
	assert.Equal(t, string(eventbus.RefreshProjectFileTree), msg.Topic)

	var evt eventbus.Event
	require.NoError(t, json.Unmarshal(msg.Payload, &evt))
	assert.Equal(t, eventbus.RefreshProjectFileTree, evt.Type)

	assert.Empty(t, all.send)
	assert.Empty(t, refreshOnly.send)
}

func TestClient_Subscriptions(t *testing.T) {
	hub := runHub(t)
	c := addClient(t, hub)

	c.handleMessage(context.Background(), &WSMessage{
		Type:    MessageSubscribe,
		Payload: json.RawMessage(`{"topics":["CLOSE_FILE","SET_CURRENT_FILE"]}`),
	})
	assert.True(t, c.subscribed("CLOSE_FILE"))
	assert.False(t, c.subscribed("REFRESH_PROJECT_FILE_TREE"))

	c.handleMessage(context.Background(), &WSMessage{
		Type:    MessageUnsubscribe,
		Payload: json.RawMessage(`{"topics":["CLOSE_FILE","SET_CURRENT_FILE"]}`),
	})
	assert.True(t, c.subscribed("REFRESH_PROJECT_FILE_TREE"), "no topics means everything")
}

func TestClient_RejectsBadMessages(t *testing.T) {
	hub := runHub(t)
	c := addClient(t, hub)
	ctx := context.Background()

	c.handleMessage(ctx, &WSMessage{Type: "shout"})
	assert.Equal(t, MessageError, receive(t, c).Type)

	c.handleMessage(ctx, &WSMessage{Type: MessageIntent, Payload: json.RawMessage(`{"type":"EXPLODE"}`)})
	assert.Equal(t, MessageError, receive(t, c).Type)

	// the hub has no bus
	c.handleMessage(ctx, &WSMessage{Type: MessageIntent, Payload: json.RawMessage(`{"type":"NEW_FILE"}`)})
	msg := receive(t, c)
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, string(msg.Payload), "disabled")
}
