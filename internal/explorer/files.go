package explorer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/schemafield"
	"github.com/schemadesk/engine/internal/tracing"
)

// emptyDocument is the data body of a newly created file
var emptyDocument = []byte("[]")

// NewFile creates a file under parent. When parent does not resolve to a
// folder the file is a scratch file kept only in the session. Otherwise the
// data file and its config file are written before the tree changes.
func (e *Engine) NewFile(ctx context.Context, parent string) (res Result, err error) {
	parent = filetree.Clean(parent)
	ctx, done := e.begin(ctx, "new_file", attribute.String(tracing.AttrPath, parent))
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	name := e.newName()
	folder, ok := filetree.FindFolder(e.tree, parent)
	if parent == "" || !ok {
		node := filetree.NewFile(e.base, filetree.RelPath("", name))
		e.addRecent(node)
		e.updateGauges()
		e.log.Debug().Str("path", node.CurrentPath).Msg("Scratch file created")
		return Result{Node: node.Clone()}, nil
	}

	rel := filetree.JoinPath(parent, name)
	if _, exists := filetree.FindFile(e.tree, rel); exists {
		return Result{}, InvariantViolationError{Path: rel, Reason: "file already exists"}
	}

	config, err := schemafield.Encode(schemafield.DefaultSchema())
	if err != nil {
		return Result{}, err
	}

	// phase 1: durable writes, data first
	if err := e.gateway.WriteFile(ctx, rel, emptyDocument); err != nil {
		return Result{}, StorageError{Op: "write", Path: rel, Err: err}
	}
	configPath := filetree.ConfigPath(rel)
	if err := e.gateway.WriteFile(ctx, configPath, config); err != nil {
		undo := e.gateway.DeleteFile(ctx, rel)
		e.compensated(ctx, "new_file", rel, undo)
		return Result{}, StorageError{Op: "write", Path: configPath, Err: err, Compensated: undo == nil}
	}

	// phase 2: commit
	node := filetree.NewFile(e.base, rel)
	folder.AppendChild(node)
	e.addRecent(node)
	e.saveRecents()
	e.updateGauges()

	e.log.Info().Str("path", rel).Msg("File created")

	return Result{
		Node:   node.Clone(),
		Events: e.stamp([]eventbus.Event{eventbus.TreeRefreshed()}),
	}, nil
}

// DeleteFile removes a file and its config file from storage, then from the
// tree and the session.
func (e *Engine) DeleteFile(ctx context.Context, p string) (res Result, err error) {
	p = filetree.Clean(p)
	ctx, done := e.begin(ctx, "delete_file", attribute.String(tracing.AttrPath, p))
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := filetree.FindFile(e.tree, p)
	if !ok {
		i := e.recentIndex(p)
		if i < 0 {
			return Result{}, NotFoundError{Path: p}
		}
		// session-only file, nothing stored
		node = e.recent[i]
		e.removeRecent(p)
		var events []eventbus.Event
		if e.fallbackCurrent(ctx, p) {
			events = append(events, eventbus.CurrentFileSet(e.current.Clone()))
		}
		e.saveRecents()
		e.updateGauges()
		return Result{Node: node.Clone(), Events: e.stamp(events)}, nil
	}

	configPath := filetree.ConfigPath(p)
	data, dataErr := e.gateway.ReadFile(ctx, p)
	if dataErr != nil && !isNotExist(dataErr) {
		return Result{}, StorageError{Op: "read", Path: p, Err: dataErr}
	}

	// phase 1: durable deletes, data first
	if err := e.gateway.DeleteFile(ctx, p); err != nil && !isNotExist(err) {
		return Result{}, StorageError{Op: "delete", Path: p, Err: err}
	}
	if err := e.gateway.DeleteFile(ctx, configPath); err != nil && !isNotExist(err) {
		var undo error
		if dataErr == nil {
			undo = e.gateway.WriteFile(ctx, p, data)
			e.compensated(ctx, "delete_file", p, undo)
		}
		return Result{}, StorageError{Op: "delete", Path: configPath, Err: err, Compensated: dataErr == nil && undo == nil}
	}

	// phase 2: commit
	filetree.Remove(e.tree, p)
	e.removeRecent(p)

	events := []eventbus.Event{eventbus.TreeRefreshed()}
	if e.fallbackCurrent(ctx, p) {
		events = append(events, eventbus.CurrentFileSet(e.current.Clone()))
	} else if ptr, ok := e.persistedPointer(ctx); ok && ptr == node.FullPath {
		e.persistPointer(ctx, nil)
	}
	e.saveRecents()
	e.updateGauges()

	e.log.Info().Str("path", p).Msg("File deleted")

	return Result{Node: node.Clone(), Events: e.stamp(events)}, nil
}

// RenameFile moves a file and its config file to target. The target must
// not exist and its parent folder must.
func (e *Engine) RenameFile(ctx context.Context, source, target string) (res Result, err error) {
	source, target = filetree.Clean(source), filetree.Clean(target)
	ctx, done := e.begin(ctx, "rename_file",
		attribute.String(tracing.AttrSourcePath, source),
		attribute.String(tracing.AttrTargetPath, target),
	)
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := filetree.FindFile(e.tree, source)
	if !ok {
		return Result{}, NotFoundError{Path: source}
	}
	if err := e.checkTarget(source, target); err != nil {
		return Result{}, err
	}
	dest, ok := filetree.FindFolder(e.tree, filetree.ParentPath(target))
	if !ok {
		return Result{}, NotFoundError{Path: filetree.ParentPath(target)}
	}

	// phase 1: durable renames, data first
	if err := e.gateway.RenameFile(ctx, source, target); err != nil {
		return Result{}, StorageError{Op: "rename", Path: source, Err: err}
	}
	srcConfig, dstConfig := filetree.ConfigPath(source), filetree.ConfigPath(target)
	if err := e.gateway.RenameFile(ctx, srcConfig, dstConfig); err != nil && !isNotExist(err) {
		undo := e.gateway.RenameFile(ctx, target, source)
		e.compensated(ctx, "rename_file", source, undo)
		return Result{}, StorageError{Op: "rename", Path: srcConfig, Err: err, Compensated: undo == nil}
	}

	// phase 2: commit
	oldFull := node.FullPath
	if filetree.ParentPath(source) != filetree.ParentPath(target) {
		filetree.Remove(e.tree, source)
		dest.AppendChild(node)
	}
	node.Relocate(e.base, target)

	events := []eventbus.Event{eventbus.TreeRefreshed()}
	if ptr, ok := e.persistedPointer(ctx); ok && ptr == oldFull {
		e.current = node
		e.addRecent(node)
		e.persistPointer(ctx, node)
		events = append(events, eventbus.CurrentFileSet(node.Clone()))
	}
	e.saveRecents()

	e.log.Info().Str("source", source).Str("target", target).Msg("File renamed")

	return Result{Node: node.Clone(), Events: e.stamp(events)}, nil
}

func (e *Engine) checkTarget(source, target string) error {
	switch {
	case target == "":
		return InvariantViolationError{Path: target, Reason: "target path is empty"}
	case target == source:
		return InvariantViolationError{Path: target, Reason: "target equals source"}
	case filetree.IsUntitled(target):
		return InvariantViolationError{Path: target, Reason: "target is reserved for unsaved files"}
	case filetree.IsConfigPath(target):
		return InvariantViolationError{Path: target, Reason: "target names a config file"}
	}
	if _, ok := filetree.FindFile(e.tree, target); ok {
		return InvariantViolationError{Path: target, Reason: "target already exists"}
	}
	if _, ok := filetree.FindFolder(e.tree, target); ok {
		return InvariantViolationError{Path: target, Reason: "target is a folder"}
	}
	return nil
}

// compensated records the outcome of undoing a data-file step
func (e *Engine) compensated(ctx context.Context, op, p string, undo error) {
	e.metrics.RecordCompensation(op, undo)
	tracing.SpanFromContext(ctx).SetAttributes(attribute.Bool(tracing.AttrCompensated, undo == nil))
	if undo != nil {
		e.log.Error().Err(undo).Str("op", op).Str("path", p).Msg("Failed to restore data file")
		return
	}
	e.log.Warn().Str("op", op).Str("path", p).Msg("Config step failed, data file restored")
}
