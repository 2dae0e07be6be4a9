package explorer

import (
	"context"
	"fmt"

	"github.com/schemadesk/engine/internal/eventbus"
)

// Attach subscribes the engine to the bus for the request events and makes
// it publish its notifications there. The returned func detaches it.
func (e *Engine) Attach(bus *eventbus.Bus) func() {
	e.busMu.Lock()
	e.bus = bus
	e.busMu.Unlock()

	unsubscribe := bus.Subscribe("explorer", e,
		eventbus.NewFile,
		eventbus.DeleteFile,
		eventbus.RenameFile,
		eventbus.SetCurrentFile,
		eventbus.CloseFile,
		eventbus.RefreshProjectFileTree,
	)
	return func() {
		unsubscribe()
		e.busMu.Lock()
		e.bus = nil
		e.busMu.Unlock()
	}
}

// HandleEvent runs the operation an inbound event requests and publishes
// the resulting notifications. Events emitted by the engine itself are
// ignored.
func (e *Engine) HandleEvent(ctx context.Context, evt eventbus.Event) error {
	if evt.Source == eventbus.SourceExplorer {
		return nil
	}

	var (
		res Result
		err error
	)
	switch evt.Type {
	case eventbus.NewFile:
		res, err = e.NewFile(ctx, evt.Path)
	case eventbus.DeleteFile:
		res, err = e.DeleteFile(ctx, evt.Path)
	case eventbus.RenameFile:
		res, err = e.RenameFile(ctx, evt.SourcePath, evt.TargetPath)
	case eventbus.SetCurrentFile:
		res, err = e.SetCurrentFile(ctx, evt.Node)
	case eventbus.CloseFile:
		res, err = e.CloseFile(ctx, evt.Node)
	case eventbus.RefreshProjectFileTree:
		res, err = e.Refresh(ctx)
	default:
		return fmt.Errorf("unsupported event type: %s", evt.Type)
	}
	if err != nil {
		e.log.Warn().Err(err).Str("event", string(evt.Type)).Str("id", evt.ID).Msg("Event handling failed")
		return err
	}
	return e.Publish(ctx, res)
}

// Publish sends the notifications of res on the attached bus, if any
func (e *Engine) Publish(ctx context.Context, res Result) error {
	e.busMu.RLock()
	bus := e.bus
	e.busMu.RUnlock()

	if bus == nil || len(res.Events) == 0 {
		return nil
	}
	return bus.PublishAll(ctx, res.Events)
}
