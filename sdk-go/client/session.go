package client

import (
	"context"
	"net/http"

	"github.com/schemadesk/engine/internal/api/http/handlers"
)

// SessionClient reads and changes the editing session
type SessionClient struct {
	client *Client
}

// Get returns the current session
func (s *SessionClient) Get(ctx context.Context) (*Session, error) {
	var session Session
	if err := s.client.do(ctx, http.MethodGet, "/api/v1/session", nil, nil, &session, "get session"); err != nil {
		return nil, err
	}
	return &session, nil
}

// Open makes p the current file and returns the updated session
func (s *SessionClient) Open(ctx context.Context, p string) (*Session, error) {
	var session Session
	req := handlers.PathRequest{Path: p}
	if err := s.client.do(ctx, http.MethodPost, "/api/v1/session/current", nil, req, &session, "open file"); err != nil {
		return nil, err
	}
	return &session, nil
}

// Close removes p from the recent files and returns the updated session
func (s *SessionClient) Close(ctx context.Context, p string) (*Session, error) {
	var session Session
	req := handlers.PathRequest{Path: p}
	if err := s.client.do(ctx, http.MethodPost, "/api/v1/session/close", nil, req, &session, "close file"); err != nil {
		return nil, err
	}
	return &session, nil
}
