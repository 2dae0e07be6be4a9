// Package httpserver runs an http.Handler on its own listener with the
// Start/Stop/Ready lifecycle shared by the API and metrics endpoints.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/schemadesk/engine/internal/logger"
)

const readHeaderTimeout = 10 * time.Second

// Server serves one handler. A zero port in addr picks a free port; Addr
// reports the bound one.
type Server struct {
	name    string
	addr    string
	handler http.Handler
	srv     *http.Server
	ln      net.Listener
	log     zerolog.Logger
	mu      sync.RWMutex
}

// New prepares a server; nothing is bound until Start
func New(name, addr string, handler http.Handler) *Server {
	return &Server{
		name:    name,
		addr:    addr,
		handler: handler,
		log:     logger.WithComponent(name + ".server"),
	}
}

// Start binds the address and serves in the background. Starting a running
// server is a no-op.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%s: listen on %s: %w", s.name, s.addr, err)
	}

	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: readHeaderTimeout}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("Serve failed")
		}
	}()

	s.srv, s.ln = srv, ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("Listening")
	return nil
}

// Stop drains in-flight requests until ctx expires, then closes what is left
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv, s.ln = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	err := srv.Shutdown(ctx)
	if err != nil {
		_ = srv.Close()
	}
	s.log.Info().Err(err).Msg("Stopped")
	return err
}

// Ready reports whether the server is listening
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ln != nil
}

// Addr returns the bound address while running, else the configured one
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}
