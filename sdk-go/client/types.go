package client

import (
	"github.com/schemadesk/engine/internal/api/http/handlers"
	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/filetree"
)

type (
	// Node is one file or folder of the project tree
	Node = filetree.Node

	// Event is an engine notification or an intent sent to the engine
	Event = eventbus.Event

	// Message is a websocket frame
	Message = handlers.WSMessage
)

// Session is the editing session: the current file and the recent files
type Session struct {
	Current *Node   `json:"currentFile"`
	Recent  []*Node `json:"recentOpenFiles"`
}

// CurrentPath returns the current file's project-relative path, or ""
func (s *Session) CurrentPath() string {
	if s == nil || s.Current == nil {
		return ""
	}
	return s.Current.CurrentPath
}

type nodeResponse struct {
	Node *Node `json:"node"`
}
