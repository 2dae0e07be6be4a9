package eventbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/schemadesk/engine/internal/filetree"
)

// Type names a bus channel
type Type string

const (
	NewFile                Type = "NEW_FILE"
	DeleteFile             Type = "DELETE_FILE"
	RenameFile             Type = "RENAME_FILE"
	SetCurrentFile         Type = "SET_CURRENT_FILE"
	CloseFile              Type = "CLOSE_FILE"
	RefreshProjectFileTree Type = "REFRESH_PROJECT_FILE_TREE"
)

// Types lists every known channel
var Types = []Type{NewFile, DeleteFile, RenameFile, SetCurrentFile, CloseFile, RefreshProjectFileTree}

// Valid reports whether t is a known channel
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// SourceExplorer marks notifications emitted by the explorer engine
const SourceExplorer = "explorer"

// Event is a message on the bus. Which path fields are set depends on Type:
// NEW_FILE uses Path as the parent folder, DELETE_FILE uses Path,
// RENAME_FILE uses SourcePath and TargetPath, SET_CURRENT_FILE and
// CLOSE_FILE carry Node.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	Source     string         `json:"source,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Path       string         `json:"path,omitempty"`
	SourcePath string         `json:"sourcePath,omitempty"`
	TargetPath string         `json:"targetPath,omitempty"`
	Node       *filetree.Node `json:"node,omitempty"`
}

func newEvent(t Type) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: time.Now().UTC()}
}

// NewFileRequested asks for a new file under parent ("" for an untitled file)
func NewFileRequested(parent string) Event {
	e := newEvent(NewFile)
	e.Path = parent
	return e
}

// DeleteFileRequested asks for the file at path to be deleted
func DeleteFileRequested(path string) Event {
	e := newEvent(DeleteFile)
	e.Path = path
	return e
}

// RenameFileRequested asks for source to be renamed to target
func RenameFileRequested(source, target string) Event {
	e := newEvent(RenameFile)
	e.SourcePath = source
	e.TargetPath = target
	return e
}

// CurrentFileSet selects node as the current file. A nil node clears it.
func CurrentFileSet(node *filetree.Node) Event {
	e := newEvent(SetCurrentFile)
	e.Node = node
	return e
}

// FileClosed closes node in the session
func FileClosed(node *filetree.Node) Event {
	e := newEvent(CloseFile)
	e.Node = node
	return e
}

// TreeRefreshed notifies that the project tree changed
func TreeRefreshed() Event {
	return newEvent(RefreshProjectFileTree)
}

// From stamps the event with its emitter
func (e Event) From(source string) Event {
	e.Source = source
	return e
}
