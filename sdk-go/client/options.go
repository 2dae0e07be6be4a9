package client

import (
	"net/http"
	"time"

	"github.com/schemadesk/engine/internal/eventbus"
)

// Option is a functional option for client configuration
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// SubscribeOptions holds options for subscribing to engine notifications
type SubscribeOptions struct {
	Types      []eventbus.Type
	BufferSize int
}

// SubscribeOption is a functional option for subscribe
type SubscribeOption func(*SubscribeOptions)

// WithTypes limits the subscription to the given notification types
func WithTypes(types ...eventbus.Type) SubscribeOption {
	return func(opts *SubscribeOptions) {
		opts.Types = append(opts.Types, types...)
	}
}

// WithBufferSize sets the number of notifications buffered before the
// subscription drops the connection (1-1024)
func WithBufferSize(n int) SubscribeOption {
	return func(opts *SubscribeOptions) {
		if n < 1 {
			n = 1
		}
		if n > 1024 {
			n = 1024
		}
		opts.BufferSize = n
	}
}
