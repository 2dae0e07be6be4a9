package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/schemadesk/engine/internal/logger"
)

// Handler processes an event
type Handler interface {
	HandleEvent(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a plain function to the Handler interface
type HandlerFunc func(ctx context.Context, evt Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

type subscription struct {
	id      uint64
	name    string
	types   map[Type]struct{}
	handler Handler
}

func (s *subscription) wants(t Type) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Bus delivers events synchronously on the publisher's goroutine, to
// subscribers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	nextID uint64
	log    zerolog.Logger
}

// New creates an empty bus
func New() *Bus {
	return &Bus{
		log: logger.WithComponent("eventbus"),
	}
}

// Subscribe registers a named handler for the given types, or for every type
// when none are given. The returned func removes the subscription.
func (b *Bus) Subscribe(name string, h Handler, types ...Type) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, name: name, handler: h}
	if len(types) > 0 {
		sub.types = make(map[Type]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}
	b.subs = append(b.subs, sub)

	b.log.Debug().Str("subscriber", name).Int("types", len(types)).Msg("Subscribed")

	id := sub.id
	return func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers evt to every interested subscriber. A failing handler does
// not stop delivery; all handler errors are returned joined.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if !s.wants(evt.Type) {
			continue
		}
		if err := s.handler.HandleEvent(ctx, evt); err != nil {
			b.log.Warn().
				Err(err).
				Str("subscriber", s.name).
				Str("event_type", string(evt.Type)).
				Str("event_id", evt.ID).
				Msg("Event handler failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// PublishAll publishes events in order
func (b *Bus) PublishAll(ctx context.Context, events []Event) error {
	var errs []error
	for _, evt := range events {
		if err := b.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribers returns the number of active subscriptions
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
