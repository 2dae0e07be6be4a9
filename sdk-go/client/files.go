package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/schemadesk/engine/internal/api/http/handlers"
)

// FileClient provides operations on the project tree and its files
type FileClient struct {
	client *Client
}

func pathQuery(p string) url.Values {
	return url.Values{"path": []string{p}}
}

// Tree returns the project tree
func (f *FileClient) Tree(ctx context.Context) (*Node, error) {
	var tree Node
	if err := f.client.do(ctx, http.MethodGet, "/api/v1/tree", nil, nil, &tree, "tree"); err != nil {
		return nil, err
	}
	return &tree, nil
}

// Refresh rescans the project folder and returns the new tree
func (f *FileClient) Refresh(ctx context.Context) (*Node, error) {
	var tree Node
	if err := f.client.do(ctx, http.MethodPost, "/api/v1/refresh", nil, nil, &tree, "refresh"); err != nil {
		return nil, err
	}
	return &tree, nil
}

// Create creates a data file and its default config under parent. An
// empty parent creates an untitled file that only lives in the session.
func (f *FileClient) Create(ctx context.Context, parent string) (*Node, error) {
	var resp nodeResponse
	req := handlers.NewFileRequest{ParentPath: parent}
	if err := f.client.do(ctx, http.MethodPost, "/api/v1/files", nil, req, &resp, "create file"); err != nil {
		return nil, err
	}
	return resp.Node, nil
}

// Delete deletes a data file and its config
func (f *FileClient) Delete(ctx context.Context, p string) error {
	return f.client.do(ctx, http.MethodDelete, "/api/v1/files", pathQuery(p), nil, nil, "delete file")
}

// Rename moves a data file and its config to target
func (f *FileClient) Rename(ctx context.Context, source, target string) (*Node, error) {
	var resp nodeResponse
	req := handlers.RenameRequest{SourcePath: source, TargetPath: target}
	if err := f.client.do(ctx, http.MethodPost, "/api/v1/files/rename", nil, req, &resp, "rename file"); err != nil {
		return nil, err
	}
	return resp.Node, nil
}

// Data returns the raw JSON document of a file
func (f *FileClient) Data(ctx context.Context, p string) (json.RawMessage, error) {
	var data []byte
	if err := f.client.do(ctx, http.MethodGet, "/api/v1/files/data", pathQuery(p), nil, &data, "read data"); err != nil {
		return nil, err
	}
	return data, nil
}

// SaveData validates doc against the file's schema and writes it
func (f *FileClient) SaveData(ctx context.Context, p string, doc json.RawMessage) error {
	return f.client.do(ctx, http.MethodPut, "/api/v1/files/data", pathQuery(p), []byte(doc), nil, "save data")
}

// Config returns the file's schema config in its stored JSON form
func (f *FileClient) Config(ctx context.Context, p string) (json.RawMessage, error) {
	var data []byte
	if err := f.client.do(ctx, http.MethodGet, "/api/v1/files/config", pathQuery(p), nil, &data, "read config"); err != nil {
		return nil, err
	}
	return data, nil
}

// JSONSchema returns the JSON Schema derived from the file's config
func (f *FileClient) JSONSchema(ctx context.Context, p string) (map[string]any, error) {
	q := pathQuery(p)
	q.Set("format", "jsonschema")
	var schema map[string]any
	if err := f.client.do(ctx, http.MethodGet, "/api/v1/files/config", q, nil, &schema, "read json schema"); err != nil {
		return nil, err
	}
	return schema, nil
}

// Defaults returns the default document for the file's schema
func (f *FileClient) Defaults(ctx context.Context, p string) (json.RawMessage, error) {
	var data []byte
	if err := f.client.do(ctx, http.MethodGet, "/api/v1/files/defaults", pathQuery(p), nil, &data, "read defaults"); err != nil {
		return nil, err
	}
	return data, nil
}
