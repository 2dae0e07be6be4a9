package explorer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/schemadesk/engine/internal/eventbus"
	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/tracing"
)

// SetCurrentFile selects node as the current file and opens it in the
// session. The node is matched by CurrentPath against the tree, then the
// open files. A nil node clears the selection.
func (e *Engine) SetCurrentFile(ctx context.Context, node *filetree.Node) (res Result, err error) {
	ctx, done := e.begin(ctx, "set_current_file", attribute.String(tracing.AttrPath, pathOf(node)))
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if node == nil {
		e.current = nil
		e.persistPointer(ctx, nil)
		return Result{Events: e.stamp([]eventbus.Event{eventbus.CurrentFileSet(nil)})}, nil
	}

	canonical, err := e.resolve(node)
	if err != nil {
		return Result{}, err
	}

	e.current = canonical
	e.addRecent(canonical)
	e.persistPointer(ctx, canonical)
	e.saveRecents()
	e.updateGauges()

	return Result{
		Node:   canonical.Clone(),
		Events: e.stamp([]eventbus.Event{eventbus.CurrentFileSet(canonical.Clone())}),
	}, nil
}

// SetCurrentPath selects the file at p
func (e *Engine) SetCurrentPath(ctx context.Context, p string) (Result, error) {
	p = filetree.Clean(p)
	if p == "" {
		return Result{}, InvariantViolationError{Path: p, Reason: "path is empty"}
	}
	return e.SetCurrentFile(ctx, &filetree.Node{Kind: filetree.KindFile, CurrentPath: p})
}

// CloseFile removes node from the open files. Closing the current file
// selects the first remaining open file; the persisted pointer is cleared
// when nothing remains.
func (e *Engine) CloseFile(ctx context.Context, node *filetree.Node) (res Result, err error) {
	ctx, done := e.begin(ctx, "close_file", attribute.String(tracing.AttrPath, pathOf(node)))
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if node == nil {
		return Result{}, InvariantViolationError{Reason: "node is required"}
	}
	i := e.recentIndex(node.CurrentPath)
	if i < 0 {
		return Result{}, NotFoundError{Path: node.CurrentPath}
	}
	closed := e.recent[i]
	e.removeRecent(closed.CurrentPath)

	events := []eventbus.Event{eventbus.FileClosed(closed.Clone())}
	if e.fallbackCurrent(ctx, closed.CurrentPath) {
		events = append(events, eventbus.CurrentFileSet(e.current.Clone()))
	}
	e.saveRecents()
	e.updateGauges()

	return Result{Node: closed.Clone(), Events: e.stamp(events)}, nil
}

// ClosePath closes the open file at p
func (e *Engine) ClosePath(ctx context.Context, p string) (Result, error) {
	return e.CloseFile(ctx, &filetree.Node{Kind: filetree.KindFile, CurrentPath: filetree.Clean(p)})
}

// resolve maps a caller supplied node to the engine's own node
func (e *Engine) resolve(node *filetree.Node) (*filetree.Node, error) {
	if found, ok := filetree.FindFile(e.tree, node.CurrentPath); ok {
		return found, nil
	}
	if i := e.recentIndex(node.CurrentPath); i >= 0 {
		return e.recent[i], nil
	}
	if filetree.IsUntitled(node.CurrentPath) && filetree.Base(node.CurrentPath) != filetree.Untitled {
		return filetree.NewFile(e.base, node.CurrentPath), nil
	}
	return nil, NotFoundError{Path: node.CurrentPath}
}

func pathOf(n *filetree.Node) string {
	if n == nil {
		return ""
	}
	return n.CurrentPath
}
