package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/schemadesk/engine/internal/api/http/handlers"
	"github.com/schemadesk/engine/internal/eventbus"
)

const (
	defaultBufferSize = 64
	writeWait         = 10 * time.Second
)

// ErrSubscriptionClosed is returned when sending on a closed subscription
var ErrSubscriptionClosed = errors.New("subscription closed")

// EventClient streams engine notifications over the websocket endpoint
type EventClient struct {
	client *Client
}

// Subscription is an open websocket connection. Notifications arrive on
// Events; server-side failures of intents arrive on Errors. Both channels
// are closed when the connection ends.
type Subscription struct {
	conn    *websocket.Conn
	events  chan Event
	errs    chan error
	done    chan struct{}
	writeMu sync.Mutex
	once    sync.Once
	mu      sync.Mutex
	err     error
}

// Subscribe opens a websocket connection and starts receiving notifications
func (e *EventClient) Subscribe(ctx context.Context, opts ...SubscribeOption) (*Subscription, error) {
	options := &SubscribeOptions{BufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(options)
	}

	u := *e.client.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws"

	header := http.Header{}
	header.Set("User-Agent", e.client.userAgent)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, &Error{Status: resp.StatusCode, Message: "subscribe failed", Err: err}
		}
		return nil, &Error{Message: "subscribe failed", Err: err}
	}

	s := &Subscription{
		conn:   conn,
		events: make(chan Event, options.BufferSize),
		errs:   make(chan error, options.BufferSize),
		done:   make(chan struct{}),
	}

	if len(options.Types) > 0 {
		topics := make([]string, len(options.Types))
		for i, t := range options.Types {
			topics[i] = string(t)
		}
		if err := s.write(handlers.MessageSubscribe, "", map[string][]string{"topics": topics}); err != nil {
			_ = conn.Close()
			return nil, &Error{Message: "subscribe failed", Err: err}
		}
	}

	go s.readLoop()
	return s, nil
}

// Events returns the notification channel
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Errors returns the channel of intent failures reported by the server
func (s *Subscription) Errors() <-chan error {
	return s.errs
}

// Err returns the error that ended the subscription, nil after Close
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Send publishes an intent, such as eventbus.NewFileRequested, to the engine
func (s *Subscription) Send(evt Event) error {
	if !evt.Type.Valid() {
		return fmt.Errorf("unknown event type: %s", evt.Type)
	}
	select {
	case <-s.done:
		return ErrSubscriptionClosed
	default:
	}
	return s.write(handlers.MessageIntent, string(evt.Type), evt)
}

// Close ends the subscription
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *Subscription) write(typ, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(Message{Type: typ, Topic: topic, Payload: payload})
}

func (s *Subscription) readLoop() {
	defer close(s.errs)
	defer close(s.events)

	for {
		var msg Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.done:
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					s.mu.Lock()
					s.err = err
					s.mu.Unlock()
				}
				_ = s.conn.Close()
			}
			return
		}

		switch msg.Type {
		case handlers.MessageEvent:
			var evt eventbus.Event
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				continue
			}
			select {
			case s.events <- evt:
			case <-s.done:
				return
			}
		case handlers.MessageError:
			var body errorBody
			_ = json.Unmarshal(msg.Payload, &body)
			err := &Error{Code: body.Code, Message: fmt.Sprintf("%s failed: %s", msg.Topic, body.Error)}
			select {
			case s.errs <- err:
			default:
			}
		}
	}
}
