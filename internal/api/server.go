package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	httpapi "github.com/schemadesk/engine/internal/api/http"
	"github.com/schemadesk/engine/internal/api/http/handlers"
	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/explorer"
	"github.com/schemadesk/engine/internal/httpserver"
	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/metrics"
)

// Server runs the HTTP API and the websocket relay for one engine
type Server struct {
	engine     *explorer.Engine
	bus        *eventbus.Bus
	hub        *handlers.Hub
	httpServer *httpserver.Server
	stopHub    context.CancelFunc
	detach     func()
	log        zerolog.Logger
	ready      bool
	stopped    bool
	mu         sync.RWMutex
}

// Config holds configuration for the API server
type Config struct {
	HTTPAddr string
}

// NewServer creates a new API server. The engine must already be attached
// to bus for websocket intents to reach it.
func NewServer(cfg Config, engine *explorer.Engine, bus *eventbus.Bus, m *metrics.APIMetrics) *Server {
	s := &Server{
		engine: engine,
		bus:    bus,
		hub:    handlers.NewHub(bus, m),
		log:    logger.WithComponent("api"),
	}

	router := httpapi.NewRouter(engine, s.hub, handlers.ReadyFunc(s.Ready), m)
	s.httpServer = httpserver.New("api", cfg.HTTPAddr, router)

	return s
}

// Start starts the websocket hub and the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}
	if s.stopped {
		return fmt.Errorf("api server cannot be restarted")
	}

	s.log.Info().Msg("Starting API server")

	hubCtx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(hubCtx)
	s.stopHub = cancel
	s.detach = s.bus.Subscribe("websocket", s.hub)

	if err := s.httpServer.Start(ctx); err != nil {
		s.detach()
		cancel()
		s.stopped = true
		return err
	}

	s.ready = true
	s.log.Info().Str("addr", s.httpServer.Addr()).Msg("API server started")

	return nil
}

// Stop gracefully stops the HTTP server and disconnects websocket clients.
// The lock is released before shutdown so in-flight /ready probes can finish.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return nil
	}
	s.ready = false
	s.stopped = true
	detach, stopHub := s.detach, s.stopHub
	s.mu.Unlock()

	s.log.Info().Msg("Stopping API server")

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Error stopping HTTP server")
	}
	detach()
	stopHub()

	s.log.Info().Msg("API server stopped")

	return nil
}

// Ready returns true once the server is started and the project is loaded
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready && s.httpServer.Ready() && s.engine.Loaded()
}

// Addr returns the bound HTTP address
func (s *Server) Addr() string {
	return s.httpServer.Addr()
}
