package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/metrics"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// SourceWebsocket marks intents received from websocket clients
const SourceWebsocket = "websocket"

// Message types on the websocket
const (
	MessageEvent       = "event"
	MessageIntent      = "intent"
	MessageSubscribe   = "subscribe"
	MessageUnsubscribe = "unsubscribe"
	MessageError       = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// the editor UI is served from another origin during development
		return true
	},
}

// Client represents a WebSocket client connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]bool // Subscribed event types, empty means all
	mu     sync.RWMutex
	log    zerolog.Logger
}

// Hub relays bus notifications to websocket clients and forwards client
// intents onto the bus
type Hub struct {
	bus        *eventbus.Bus
	metrics    *metrics.APIMetrics
	clients    map[*Client]bool
	broadcast  chan *WSMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        zerolog.Logger
}

// WSMessage represents a WebSocket message. Topic is the event type.
type WSMessage struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// NewHub creates a new WebSocket hub. A nil bus disables intents.
func NewHub(bus *eventbus.Bus, m *metrics.APIMetrics) *Hub {
	return &Hub{
		bus:        bus,
		metrics:    m,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *WSMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger.WithComponent("websocket.hub"),
	}
}

// Run starts the hub's main loop until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
				h.metrics.WebsocketConnected(-1)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.WebsocketConnected(1)
			h.log.Debug().Int("clients", n).Msg("Client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.WebsocketConnected(-1)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("Client unregistered")

		case message := <-h.broadcast:
			data := h.messageToBytes(message)
			if data == nil {
				continue
			}

			// Collect clients that need to be removed (those with full send buffers)
			var clientsToRemove []*Client

			h.mu.RLock()
			for client := range h.clients {
				if !client.subscribed(message.Topic) {
					continue
				}
				select {
				case client.send <- data:
				default:
					clientsToRemove = append(clientsToRemove, client)
				}
			}
			h.mu.RUnlock()

			if len(clientsToRemove) > 0 {
				h.mu.Lock()
				for _, client := range clientsToRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
						h.metrics.WebsocketConnected(-1)
					}
				}
				h.mu.Unlock()
			}
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleEvent implements eventbus.Handler by broadcasting engine
// notifications to clients. Requests from other sources are not relayed.
func (h *Hub) HandleEvent(ctx context.Context, evt eventbus.Event) error {
	if evt.Source != eventbus.SourceExplorer {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	h.Broadcast(&WSMessage{Type: MessageEvent, Topic: string(evt.Type), Payload: payload})
	return nil
}

// Broadcast sends a message to all subscribed clients
func (h *Hub) Broadcast(msg *WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Msg("Broadcast channel full, dropping message")
	}
}

// messageToBytes converts a WSMessage to JSON bytes
func (h *Hub) messageToBytes(msg *WSMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal WebSocket message")
		return nil
	}
	return data
}

func (c *Client) subscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.topics) == 0 || c.topics[topic]
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn().Err(err).Msg("Failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error().Err(err).Msg("WebSocket error")
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.reply(MessageError, "", map[string]string{"error": "invalid message: " + err.Error()})
			continue
		}
		c.handleMessage(ctx, &msg)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming client messages
func (c *Client) handleMessage(ctx context.Context, msg *WSMessage) {
	switch msg.Type {
	case MessageSubscribe, MessageUnsubscribe:
		var payload struct {
			Topics []string `json:"topics"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.reply(MessageError, "", map[string]string{"error": "invalid subscription: " + err.Error()})
			return
		}
		c.mu.Lock()
		for _, topic := range payload.Topics {
			if msg.Type == MessageSubscribe {
				c.topics[topic] = true
			} else {
				delete(c.topics, topic)
			}
		}
		c.mu.Unlock()
		c.log.Debug().Str("type", msg.Type).Strs("topics", payload.Topics).Msg("Client subscriptions changed")

	case MessageIntent:
		var evt eventbus.Event
		if err := json.Unmarshal(msg.Payload, &evt); err != nil || !evt.Type.Valid() {
			c.reply(MessageError, "", map[string]string{"error": "invalid intent"})
			return
		}
		if c.hub.bus == nil {
			c.reply(MessageError, string(evt.Type), map[string]string{"error": "intents are disabled"})
			return
		}
		evt = evt.From(SourceWebsocket)
		if err := c.hub.bus.Publish(ctx, evt); err != nil {
			_, code := StatusFor(err)
			c.reply(MessageError, string(evt.Type), ErrorResponse{Error: err.Error(), Code: code})
		}

	default:
		c.reply(MessageError, "", map[string]string{"error": "unknown message type: " + msg.Type})
	}
}

// reply queues a message for this client only
func (c *Client) reply(typ, topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	data := c.hub.messageToBytes(&WSMessage{Type: typ, Topic: topic, Payload: payload})
	defer func() {
		// send is closed once the hub drops the client
		_ = recover()
	}()
	select {
	case c.send <- data:
	default:
	}
}

// ServeWebSocket handles WebSocket requests from clients
func ServeWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log := logger.WithComponent("websocket")
		log.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		topics: make(map[string]bool),
		log:    logger.WithComponent("websocket.client"),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	// intents outlive the upgrade request
	go client.writePump()
	go client.readPump(context.Background())
}
