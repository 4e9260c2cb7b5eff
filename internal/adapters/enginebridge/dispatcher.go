package enginebridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rtsops/reinforce/internal/adapters/keybinds"
	"github.com/rtsops/reinforce/internal/adapters/metrics"
	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/application/lifecycle"
	"github.com/rtsops/reinforce/internal/application/tracking"
	"github.com/rtsops/reinforce/pkg/wire"
)

// Dispatcher translates engine envelopes into mediator commands. Handlers
// run on the connection's read goroutine, so every state mutation stays
// serialized in engine delivery order.
type Dispatcher struct {
	// baseCtx carries the session logger into command handlers. Events are
	// engine-driven and run to completion, so it is never cancelled mid-event.
	baseCtx  context.Context
	mediator common.Mediator
	keymap   *keybinds.Keymap
	mirror   *Mirror
	logger   *slog.Logger
}

func NewDispatcher(ctx context.Context, med common.Mediator, keymap *keybinds.Keymap, mirror *Mirror, logger *slog.Logger) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	if keymap == nil {
		keymap = keybinds.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		baseCtx:  ctx,
		mediator: med,
		keymap:   keymap,
		mirror:   mirror,
		logger:   logger,
	}
}

// Register wires all post-handshake message handlers onto the connection.
func (d *Dispatcher) Register(conn *Connection) {
	conn.RegisterHandler(TypeWorldUpdate, d.HandleWorldUpdate)
	conn.RegisterHandler(TypeUnitDestroyed, d.HandleUnitDestroyed)
	conn.RegisterHandler(TypeUnitBuilt, d.HandleUnitBuilt)
	conn.RegisterHandler(TypeUnitLoaded, d.HandleUnitLoaded)
	conn.RegisterHandler(TypeUnitUnloaded, d.HandleUnitUnloaded)
	conn.RegisterHandler(TypeKeyPressed, d.HandleKeyPressed)
}

func (d *Dispatcher) HandleWorldUpdate(env wire.Envelope) (*wire.Envelope, error) {
	var update WorldUpdate
	if err := json.Unmarshal(env.Data, &update); err != nil {
		return nil, fmt.Errorf("unmarshal world_update: %w", err)
	}

	d.mirror.ApplyUpdate(update)
	d.logger.Debug("world update applied", "frame", update.Frame, "units", len(update.Units))
	return nil, nil
}

func (d *Dispatcher) HandleUnitDestroyed(env wire.Envelope) (*wire.Envelope, error) {
	var msg UnitDestroyedMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal unit_destroyed: %w", err)
	}
	metrics.RecordEngineEvent(TypeUnitDestroyed)

	// Drop the casualty from the mirror before the command runs, so sibling
	// lookups never see the dead unit.
	d.mirror.RemoveUnit(msg.Unit.ID)

	cmd := &lifecycle.UnitDestroyedCommand{Event: msg.DestroyedEvent()}
	if _, err := d.mediator.Send(d.baseCtx, cmd); err != nil {
		return nil, fmt.Errorf("unit_destroyed dispatch: %w", err)
	}
	return nil, nil
}

func (d *Dispatcher) HandleUnitBuilt(env wire.Envelope) (*wire.Envelope, error) {
	var msg UnitBuiltMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal unit_built: %w", err)
	}
	metrics.RecordEngineEvent(TypeUnitBuilt)

	// Patch the new unit in first: order inheritance reads its factory-assigned
	// queue through the mirror.
	d.mirror.UpsertUnit(msg.Unit)

	cmd := &lifecycle.UnitBuiltCommand{Event: msg.BuiltEvent()}
	if _, err := d.mediator.Send(d.baseCtx, cmd); err != nil {
		return nil, fmt.Errorf("unit_built dispatch: %w", err)
	}
	return nil, nil
}

func (d *Dispatcher) HandleUnitLoaded(env wire.Envelope) (*wire.Envelope, error) {
	var msg UnitLoadedMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal unit_loaded: %w", err)
	}
	metrics.RecordEngineEvent(TypeUnitLoaded)

	cmd := &lifecycle.UnitLoadedCommand{Event: msg.LoadedEvent()}
	if _, err := d.mediator.Send(d.baseCtx, cmd); err != nil {
		return nil, fmt.Errorf("unit_loaded dispatch: %w", err)
	}
	return nil, nil
}

func (d *Dispatcher) HandleUnitUnloaded(env wire.Envelope) (*wire.Envelope, error) {
	var msg UnitUnloadedMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal unit_unloaded: %w", err)
	}
	metrics.RecordEngineEvent(TypeUnitUnloaded)

	d.mirror.UpsertUnit(msg.Unit)

	cmd := &lifecycle.UnitUnloadedCommand{Event: msg.UnloadedEvent()}
	if _, err := d.mediator.Send(d.baseCtx, cmd); err != nil {
		return nil, fmt.Errorf("unit_unloaded dispatch: %w", err)
	}
	return nil, nil
}

func (d *Dispatcher) HandleKeyPressed(env wire.Envelope) (*wire.Envelope, error) {
	var msg KeyPressedMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal key_pressed: %w", err)
	}

	action, ok := d.keymap.Resolve(msg.Key, msg.Alt, msg.Ctrl, msg.Shift)
	if !ok {
		d.logger.Debug("unbound key press", "key", msg.Key)
		return nil, nil
	}
	if len(msg.SelectedUnitIDs) == 0 {
		d.logger.Debug("key action with empty selection", "action", action)
		return nil, nil
	}
	metrics.RecordKeyAction(action, len(msg.SelectedUnitIDs))

	switch action {
	case keybinds.ActionTag:
		cmd := &tracking.TagUnitsCommand{UnitIDs: msg.SelectedUnitIDs}
		if _, err := d.mediator.Send(d.baseCtx, cmd); err != nil {
			return nil, fmt.Errorf("tag dispatch: %w", err)
		}
	case keybinds.ActionUntag:
		cmd := &tracking.UntagUnitsCommand{UnitIDs: msg.SelectedUnitIDs}
		if _, err := d.mediator.Send(d.baseCtx, cmd); err != nil {
			return nil, fmt.Errorf("untag dispatch: %w", err)
		}
	}
	return nil, nil
}
