package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/schemadesk/engine/internal/api/validation"
	"github.com/schemadesk/engine/internal/explorer"
	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/schemafield"
)

// maxDocumentSize bounds request bodies for data documents
const maxDocumentSize = 8 << 20

// Explorer is the engine surface the HTTP API drives
type Explorer interface {
	Tree() *filetree.Node
	Session() explorer.Session
	Refresh(ctx context.Context) (explorer.Result, error)
	NewFile(ctx context.Context, parent string) (explorer.Result, error)
	DeleteFile(ctx context.Context, p string) (explorer.Result, error)
	RenameFile(ctx context.Context, source, target string) (explorer.Result, error)
	SetCurrentPath(ctx context.Context, p string) (explorer.Result, error)
	ClosePath(ctx context.Context, p string) (explorer.Result, error)
	ReadConfig(ctx context.Context, p string) (*schemafield.Field, error)
	ReadData(ctx context.Context, p string) ([]byte, error)
	SaveData(ctx context.Context, p string, data []byte) (explorer.Result, error)
	DefaultDocument(ctx context.Context, p string) (any, error)
	Publish(ctx context.Context, res explorer.Result) error
}

// FileHandlers serves the project tree, file operations and the session
type FileHandlers struct {
	explorer Explorer
	log      zerolog.Logger
}

// NewFileHandlers creates file handlers over an explorer
func NewFileHandlers(e Explorer) *FileHandlers {
	return &FileHandlers{
		explorer: e,
		log:      logger.WithComponent("http.files"),
	}
}

// NewFileRequest is the body of POST /files
type NewFileRequest struct {
	ParentPath string `json:"parentPath"`
}

// RenameRequest is the body of POST /files/rename
type RenameRequest struct {
	SourcePath string `json:"sourcePath"`
	TargetPath string `json:"targetPath"`
}

// PathRequest is the body of the session endpoints
type PathRequest struct {
	Path string `json:"path"`
}

// NodeResponse returns the node an operation affected
type NodeResponse struct {
	Node *filetree.Node `json:"node"`
}

// GetTree handles GET /api/v1/tree
func (h *FileHandlers) GetTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.explorer.Tree())
}

// Refresh handles POST /api/v1/refresh
func (h *FileHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.explorer.Refresh(r.Context())
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	h.publish(r.Context(), res)
	writeJSON(w, http.StatusOK, res.Node)
}

// GetSession handles GET /api/v1/session
func (h *FileHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.explorer.Session())
}

// CreateFile handles POST /api/v1/files
func (h *FileHandlers) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req NewFileRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
			return
		}
	}
	parent, err := validation.ValidateParentPath("parentPath", req.ParentPath)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}

	res, err := h.explorer.NewFile(r.Context(), parent)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	h.publish(r.Context(), res)
	writeJSON(w, http.StatusCreated, NodeResponse{Node: res.Node})
}

// DeleteFile handles DELETE /api/v1/files?path=
func (h *FileHandlers) DeleteFile(w http.ResponseWriter, r *http.Request) {
	p, err := validation.ValidateFilePath("path", r.URL.Query().Get("path"))
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}

	res, err := h.explorer.DeleteFile(r.Context(), p)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	h.publish(r.Context(), res)
	writeJSON(w, http.StatusOK, NodeResponse{Node: res.Node})
}

// RenameFile handles POST /api/v1/files/rename
func (h *FileHandlers) RenameFile(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	source, err := validation.ValidateFilePath("sourcePath", req.SourcePath)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	target, err := validation.ValidateFilePath("targetPath", req.TargetPath)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}

	res, err := h.explorer.RenameFile(r.Context(), source, target)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	h.publish(r.Context(), res)
	writeJSON(w, http.StatusOK, NodeResponse{Node: res.Node})
}

// GetData handles GET /api/v1/files/data?path=
func (h *FileHandlers) GetData(w http.ResponseWriter, r *http.Request) {
	p, err := validation.ValidateFilePath("path", r.URL.Query().Get("path"))
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}

	data, err := h.explorer.ReadData(r.Context(), p)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PutData handles PUT /api/v1/files/data?path=
func (h *FileHandlers) PutData(w http.ResponseWriter, r *http.Request) {
	p, err := validation.ValidateFilePath("path", r.URL.Query().Get("path"))
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}

	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read body: "+err.Error())
		return
	}
	if len(data) > maxDocumentSize {
		writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "document exceeds size limit")
		return
	}

	res, err := h.explorer.SaveData(r.Context(), p, data)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, NodeResponse{Node: res.Node})
}

// GetConfig handles GET /api/v1/files/config?path=
func (h *FileHandlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	p, err := validation.ValidateFilePath("path", r.URL.Query().Get("path"))
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}

	schema, err := h.explorer.ReadConfig(r.Context(), p)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}

	if r.URL.Query().Get("format") == "jsonschema" {
		writeJSON(w, http.StatusOK, schema.JSONSchema())
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// GetDefaults handles GET /api/v1/files/defaults?path=
func (h *FileHandlers) GetDefaults(w http.ResponseWriter, r *http.Request) {
	p, err := validation.ValidateFilePath("path", r.URL.Query().Get("path"))
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}

	doc, err := h.explorer.DefaultDocument(r.Context(), p)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// SetCurrent handles POST /api/v1/session/current
func (h *FileHandlers) SetCurrent(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pathBody(w, r)
	if !ok {
		return
	}

	res, err := h.explorer.SetCurrentPath(r.Context(), p)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	h.publish(r.Context(), res)
	writeJSON(w, http.StatusOK, h.explorer.Session())
}

// Close handles POST /api/v1/session/close
func (h *FileHandlers) Close(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pathBody(w, r)
	if !ok {
		return
	}

	res, err := h.explorer.ClosePath(r.Context(), p)
	if err != nil {
		writeEngineError(w, h.log, err)
		return
	}
	h.publish(r.Context(), res)
	writeJSON(w, http.StatusOK, h.explorer.Session())
}

func (h *FileHandlers) pathBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req PathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return "", false
	}
	p, err := validation.ValidateFilePath("path", req.Path)
	if err != nil {
		writeEngineError(w, h.log, err)
		return "", false
	}
	return p, true
}

// publish relays notifications; the request already succeeded, so failures
// of other subscribers are only logged
func (h *FileHandlers) publish(ctx context.Context, res explorer.Result) {
	if err := h.explorer.Publish(ctx, res); err != nil {
		h.log.Warn().Err(err).Msg("Failed to publish notifications")
	}
}
