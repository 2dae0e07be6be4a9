package explorer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/schemafield"
	"github.com/schemadesk/engine/internal/tracing"
)

// ReadConfig loads the schema of the file at p. Files without a stored
// config, unsaved files included, use the default schema.
func (e *Engine) ReadConfig(ctx context.Context, p string) (schema *schemafield.Field, err error) {
	p = filetree.Clean(p)
	ctx, done := e.begin(ctx, "read_config", attribute.String(tracing.AttrPath, p))
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.readConfig(ctx, p)
}

func (e *Engine) readConfig(ctx context.Context, p string) (*schemafield.Field, error) {
	if _, err := e.lookup(p); err != nil {
		return nil, err
	}
	if filetree.IsUntitled(p) {
		return schemafield.DefaultSchema(), nil
	}

	configPath := filetree.ConfigPath(p)
	raw, err := e.gateway.ReadFile(ctx, configPath)
	if isNotExist(err) {
		return schemafield.DefaultSchema(), nil
	}
	if err != nil {
		return nil, StorageError{Op: "read", Path: configPath, Err: err}
	}
	return schemafield.Decode(raw)
}

// ReadData returns the raw data document of the file at p. Unsaved files
// read as the empty document.
func (e *Engine) ReadData(ctx context.Context, p string) (data []byte, err error) {
	p = filetree.Clean(p)
	ctx, done := e.begin(ctx, "read_data", attribute.String(tracing.AttrPath, p))
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.lookup(p); err != nil {
		return nil, err
	}
	if filetree.IsUntitled(p) {
		return append([]byte(nil), emptyDocument...), nil
	}

	data, err = e.gateway.ReadFile(ctx, p)
	if isNotExist(err) {
		return nil, NotFoundError{Path: p}
	}
	if err != nil {
		return nil, StorageError{Op: "read", Path: p, Err: err}
	}
	tracing.SpanFromContext(ctx).SetAttributes(attribute.Int(tracing.AttrBytes, len(data)))
	return data, nil
}

// SaveData validates data against the file's schema and writes it. Only
// files in the project tree can be saved.
func (e *Engine) SaveData(ctx context.Context, p string, data []byte) (res Result, err error) {
	p = filetree.Clean(p)
	ctx, done := e.begin(ctx, "save_data",
		attribute.String(tracing.AttrPath, p),
		attribute.Int(tracing.AttrBytes, len(data)),
	)
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := filetree.FindFile(e.tree, p)
	if !ok {
		return Result{}, NotFoundError{Path: p}
	}

	schema, err := e.readConfig(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if err := e.validator.Validate(schema, data); err != nil {
		return Result{}, err
	}

	if err := e.gateway.WriteFile(ctx, p, data); err != nil {
		return Result{}, StorageError{Op: "write", Path: p, Err: err}
	}

	e.log.Debug().Str("path", p).Int("bytes", len(data)).Msg("Data saved")
	return Result{Node: node.Clone()}, nil
}

// DefaultDocument computes the default data of the file at p: the folded
// defaults of an object root, or of one element for an array root.
func (e *Engine) DefaultDocument(ctx context.Context, p string) (doc any, err error) {
	p = filetree.Clean(p)
	ctx, done := e.begin(ctx, "default_document", attribute.String(tracing.AttrPath, p))
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	schema, err := e.readConfig(ctx, p)
	if err != nil {
		return nil, err
	}
	if schema.Kind() == schemafield.KindArray && schema.FieldSchema != nil {
		return schemafield.DefaultDocument(schema.FieldSchema)
	}
	return schemafield.DefaultDocument(schema)
}

// lookup finds a file in the tree or among the open files
func (e *Engine) lookup(p string) (*filetree.Node, error) {
	if node, ok := filetree.FindFile(e.tree, p); ok {
		return node, nil
	}
	if i := e.recentIndex(p); i >= 0 {
		return e.recent[i], nil
	}
	return nil, NotFoundError{Path: p}
}
