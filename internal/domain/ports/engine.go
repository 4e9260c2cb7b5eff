package ports

import (
	"context"

	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// EngineGateway defines the domain's interface for querying and commanding
// the game engine.
//
// The interface lives in the domain layer so the replacement logic depends
// only on this contract, never on the wire protocol behind it:
//
//	┌─────────────────────────┐
//	│  Application Layer      │
//	│  (commands/queries)     │
//	└───────────┬─────────────┘
//	            │ depends on
//	            ↓
//	┌─────────────────────────┐
//	│  Domain Ports           │  ← This interface
//	└───────────┬─────────────┘
//	            ↑
//	            │ implements
//	┌─────────────────────────┐
//	│  Engine Bridge Adapter  │
//	└─────────────────────────┘
//
// All queries answer from the sidecar's world mirror, so they are cheap and
// reflect the engine state as of the last update push.
type EngineGateway interface {
	// Unit returns the current snapshot of a live unit on the tracked team.
	// Returns shared.UnitNotFoundError when the unit is dead or unknown.
	Unit(ctx context.Context, unitID unit.ID) (unit.Snapshot, error)

	// LiveUnits returns snapshots of every live unit on the tracked team.
	LiveUnits(ctx context.Context) ([]unit.Snapshot, error)

	// UnitOrders returns up to depth entries of the unit's pending order
	// queue, oldest first. depth <= 0 means the gateway's default lookahead.
	UnitOrders(ctx context.Context, unitID unit.ID, depth int) (order.Queue, error)

	// IssueOrders sends an order sequence to a unit. The first order replaces
	// the unit's current queue and the rest are appended after it, so the
	// sequence becomes the unit's whole program.
	IssueOrders(ctx context.Context, unitID unit.ID, orders order.Queue) error

	// IssueBuild asks a factory to enqueue construction of the given unit
	// type.
	IssueBuild(ctx context.Context, factoryID unit.ID, unitType string) error
}

// Notifier delivers human-readable confirmations to the player, typically
// the engine's chat console.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
