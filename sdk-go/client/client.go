package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds each HTTP request unless WithTimeout is given
const DefaultTimeout = 30 * time.Second

// Client is the main SchemaDesk client
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string

	// Sub-clients
	Files   *FileClient
	Session *SessionClient
	Events  *EventClient
}

// NewClient creates a client for the server at addr, for example
// "http://localhost:8080". A bare host:port is treated as http.
func NewClient(addr string, opts ...Option) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	base, err := url.Parse(strings.TrimRight(addr, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server address: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", base.Scheme)
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "schemadesk-sdk-go",
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	// Initialize sub-clients
	c.Files = &FileClient{client: c}
	c.Session = &SessionClient{client: c}
	c.Events = &EventClient{client: c}

	return c, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// HealthCheck checks if the server is running
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil, "health check")
}

// ReadinessCheck checks if the server is ready to serve requests
func (c *Client) ReadinessCheck(ctx context.Context) (bool, error) {
	err := c.do(ctx, http.MethodGet, "/ready", nil, nil, nil, "readiness check")
	if err != nil {
		var sdkErr *Error
		if errors.As(err, &sdkErr) && sdkErr.Status == http.StatusServiceUnavailable {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) endpoint(p string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + p
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request. A non-nil in is JSON encoded unless it is raw bytes;
// out receives the decoded body, or the raw bytes when it is a *[]byte.
func (c *Client) do(ctx context.Context, method, p string, query url.Values, in, out any, op string) error {
	var body io.Reader
	switch v := in.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return &Error{Message: op + " failed: encode request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p, query), body)
	if err != nil {
		return &Error{Message: op + " failed", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: op + " failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: op + " failed: read response", Err: err}
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data, op)
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = data
		return nil
	default:
		if err := json.Unmarshal(data, dst); err != nil {
			return &Error{Status: resp.StatusCode, Message: op + " failed: decode response", Err: err}
		}
		return nil
	}
}
