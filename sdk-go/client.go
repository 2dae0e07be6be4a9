// Package schemadesk provides a Go client for the SchemaDesk engine API
package schemadesk

import (
	"github.com/schemadesk/engine/sdk-go/client"
)

// Re-export types for convenience
type (
	// Client is the main SchemaDesk client
	Client = client.Client

	// Node is one file or folder of the project tree
	Node = client.Node

	// Event is an engine notification or an intent
	Event = client.Event

	// Session is the editing session
	Session = client.Session

	// Subscription is an open notification stream
	Subscription = client.Subscription

	// Error represents an SDK error
	Error = client.Error
)

// Re-export functions
var (
	// NewClient creates a new SchemaDesk client
	NewClient = client.NewClient

	// Client options
	WithHTTPClient = client.WithHTTPClient
	WithTimeout    = client.WithTimeout
	WithUserAgent  = client.WithUserAgent

	// Subscribe options
	WithTypes      = client.WithTypes
	WithBufferSize = client.WithBufferSize
)
