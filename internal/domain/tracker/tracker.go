package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/ports"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// DefaultCaptureDepth bounds how far into a unit's order queue a capture
// looks when no explicit depth is configured.
const DefaultCaptureDepth = 32

// Stats summarizes the tracker's table sizes for metrics and status output.
type Stats struct {
	Watches       int
	PendingBuilds int
	InTransit     int
}

// Tracker is the replacement state machine for one game session. It owns
// three tables keyed by unit identity: active watches, pending factory
// builds, and order caches for units riding transports. All engine access
// goes through the injected gateway.
//
// Mutating calls are expected to arrive serialized from a single event
// dispatcher; the internal lock exists so control-plane queries can read
// concurrently, not to make mutation ordering irrelevant. See Apply for the
// event ordering the handlers assume.
type Tracker struct {
	mu      sync.RWMutex
	watches map[unit.ID]*Watch
	pending *PendingBuilds
	transit *TransitCache

	gateway      ports.EngineGateway
	notifier     ports.Notifier
	catalog      *unit.Catalog
	strategies   []ReplacementStrategy
	captureDepth int
	clock        shared.Clock
	logger       *slog.Logger
}

// New creates a tracker for a session.
//
// strategies are consulted in order on every tracked loss; nil defaults to
// sibling adoption only. captureDepth <= 0 falls back to
// DefaultCaptureDepth.
func New(
	gateway ports.EngineGateway,
	notifier ports.Notifier,
	catalog *unit.Catalog,
	strategies []ReplacementStrategy,
	captureDepth int,
	clock shared.Clock,
	logger *slog.Logger,
) *Tracker {
	if catalog == nil {
		catalog = unit.NewCatalog(nil)
	}
	if len(strategies) == 0 {
		strategies = []ReplacementStrategy{NewAdoptSiblingStrategy()}
	}
	if captureDepth <= 0 {
		captureDepth = DefaultCaptureDepth
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		watches:      make(map[unit.ID]*Watch),
		pending:      NewPendingBuilds(),
		transit:      NewTransitCache(),
		gateway:      gateway,
		notifier:     notifier,
		catalog:      catalog,
		strategies:   strategies,
		captureDepth: captureDepth,
		clock:        clock,
		logger:       logger,
	}
}

// Tag marks the given units for replacement, capturing each unit's live
// order queue with a synthetic MOVE to its current position in front, so a
// later replacement first travels to where the original stood. Factories
// and unknown units are skipped silently; tagging an already tracked unit
// recaptures its queue. Returns the number of units tagged.
func (t *Tracker) Tag(ctx context.Context, unitIDs []unit.ID) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tagged := 0
	for _, id := range unitIDs {
		if err := ctx.Err(); err != nil {
			return tagged, err
		}

		snap, err := t.gateway.Unit(ctx, id)
		if err != nil {
			var notFound *shared.UnitNotFoundError
			if !errors.As(err, &notFound) {
				t.logger.Warn("tag: unit lookup failed", "unit", id, "error", err)
			}
			continue
		}
		if t.catalog.IsFactory(snap.Type) {
			continue
		}

		live, err := t.gateway.UnitOrders(ctx, id, t.captureDepth)
		if err != nil {
			t.logger.Warn("tag: order capture failed", "unit", id, "error", err)
			continue
		}

		captured := make(order.Queue, 0, len(live)+1)
		captured = append(captured, order.Move(snap.Position))
		captured = append(captured, live.Clone()...)

		t.putWatch(NewWatch(id, snap.Type, captured, t.clock))
		t.notify(ctx, fmt.Sprintf("unit %d (%s) tagged for replacement, %d orders captured", id, snap.Type, len(captured)))
		tagged++
	}
	return tagged, nil
}

// Untag removes the watch for each given unit. Units without a watch are
// skipped. Returns the number of watches removed.
func (t *Tracker) Untag(ctx context.Context, unitIDs []unit.ID) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for _, id := range unitIDs {
		w, ok := t.watches[id]
		if !ok {
			continue
		}
		delete(t.watches, id)
		t.notify(ctx, fmt.Sprintf("unit %d (%s) untagged", id, w.UnitType()))
		removed++
	}
	return removed, nil
}

// Apply dispatches a lifecycle event to its handler.
//
// Precondition: events for any single unit arrive in causal order. In
// particular a destruction is never followed by a stale unload for the same
// unit, and a factory completion precedes any load event for the new unit.
// The engine delivers callbacks in this order; the reconciliation sweep
// only covers dropped events, not reordered ones.
func (t *Tracker) Apply(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case UnitDestroyedEvent:
		return t.OnUnitDestroyed(ctx, e)
	case UnitBuiltEvent:
		return t.OnUnitBuilt(ctx, e)
	case UnitLoadedEvent:
		return t.OnUnitLoaded(ctx, e)
	case UnitUnloadedEvent:
		return t.OnUnitUnloaded(ctx, e)
	default:
		return fmt.Errorf("unhandled event %q", ev.EventName())
	}
}

// OnUnitDestroyed reacts to a destroyed unit: any transit cache entry is
// purged, and if the unit was watched its orders are re-homed through the
// replacement strategies. The unit's own watch is removed regardless of
// strategy outcome.
func (t *Tracker) OnUnitDestroyed(ctx context.Context, ev UnitDestroyedEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.transit.Drop(ev.Unit.ID)

	w, ok := t.watches[ev.Unit.ID]
	if !ok {
		return nil
	}

	loss := Loss{Unit: ev.Unit, Orders: w.Orders()}
	handled := false
	var errs []error
	for _, s := range t.strategies {
		h, err := s.Propose(ctx, t, loss)
		if err != nil {
			t.logger.Warn("replacement strategy failed",
				"strategy", s.StrategyName(), "unit", ev.Unit.ID, "type", ev.Unit.Type, "error", err)
			errs = append(errs, err)
		}
		if h {
			handled = true
			break
		}
	}
	if !handled {
		t.logger.Debug("no replacement found", "unit", ev.Unit.ID, "type", ev.Unit.Type)
	}

	delete(t.watches, ev.Unit.ID)
	return errors.Join(errs...)
}

// OnUnitBuilt consumes the oldest pending build matching the new unit's
// type. The new unit inherits the stored orders immediately and a watch is
// created for it, remembering the factory's own rally queue so a transport
// pickup can later tell rally artifacts from genuine destinations.
func (t *Tracker) OnUnitBuilt(ctx context.Context, ev UnitBuiltEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pb, ok := t.pending.Pop(ev.Unit.Type)
	if !ok {
		return nil
	}

	factoryOrders, err := t.gateway.UnitOrders(ctx, ev.Unit.ID, t.captureDepth)
	if err != nil {
		t.logger.Warn("factory order capture failed", "unit", ev.Unit.ID, "error", err)
		factoryOrders = nil
	}

	inherited := pb.Orders()
	w := NewWatch(ev.Unit.ID, ev.Unit.Type, inherited, t.clock)
	w.AssignFactoryOrders(factoryOrders)
	t.putWatch(w)

	if err := t.gateway.IssueOrders(ctx, ev.Unit.ID, inherited); err != nil {
		return fmt.Errorf("issuing inherited orders to replacement %d: %w", ev.Unit.ID, err)
	}

	t.notify(ctx, fmt.Sprintf("replacement unit %d (%s) completed, %d orders restored", ev.Unit.ID, ev.Unit.Type, len(inherited)))
	return nil
}

// OnUnitLoaded reacts to a fresh-from-factory unit being picked up by a
// transport. The unit's genuine post-disembark intent is cached, and the
// transport is sent along the factory rally route to unload the unit at the
// rally destination and then return to where it started.
//
// Without factory orders on the watch there is nothing to untangle and the
// event is ignored.
func (t *Tracker) OnUnitLoaded(ctx context.Context, ev UnitLoadedEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.watches[ev.Unit.ID]
	if !ok || !w.HasFactoryOrders() {
		return nil
	}

	live, err := t.gateway.UnitOrders(ctx, ev.Unit.ID, t.captureDepth)
	if err != nil {
		return fmt.Errorf("capturing orders of loaded unit %d: %w", ev.Unit.ID, err)
	}

	factoryOrders := w.FactoryOrders()
	t.transit.Put(ev.Unit.ID, live.Filter(factoryOrders))

	plan := make(order.Queue, 0, len(factoryOrders)+3)
	plan = append(plan, order.Stop())
	plan = append(plan, factoryOrders...)

	// The last MOVE of the rally route is the factory-assigned destination.
	// A rally route without one simply skips the unload leg.
	if lastMove, ok := factoryOrders.LastMove(); ok {
		if dest, ok := lastMove.TargetPosition(); ok {
			plan = append(plan, order.UnloadAt(dest))
		}
	}

	if transport, err := t.gateway.Unit(ctx, ev.TransportID); err == nil {
		plan = append(plan, order.Move(transport.Position))
	} else {
		t.logger.Warn("transport lookup failed, skipping return leg", "transport", ev.TransportID, "error", err)
	}

	if err := t.gateway.IssueOrders(ctx, ev.TransportID, plan); err != nil {
		return fmt.Errorf("issuing escort plan to transport %d: %w", ev.TransportID, err)
	}

	w.ClearFactoryOrders()
	t.logger.Info("escort plan issued", "unit", ev.Unit.ID, "transport", ev.TransportID, "legs", len(plan))
	return nil
}

// OnUnitUnloaded restores a disembarked unit's cached orders. The unit is
// stopped first; without that the engine drops orders issued in the same
// frame as the unload. Units without a cache entry are ignored.
func (t *Tracker) OnUnitUnloaded(ctx context.Context, ev UnitUnloadedEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cached, ok := t.transit.Take(ev.Unit.ID)
	if !ok {
		return nil
	}

	plan := make(order.Queue, 0, len(cached)+1)
	plan = append(plan, order.Stop())
	plan = append(plan, cached...)

	if err := t.gateway.IssueOrders(ctx, ev.Unit.ID, plan); err != nil {
		return fmt.Errorf("restoring orders to unloaded unit %d: %w", ev.Unit.ID, err)
	}

	t.logger.Info("cached orders restored", "unit", ev.Unit.ID, "orders", len(cached))
	return nil
}

// Reconcile sweeps the watch table against the live world and synthesizes a
// destruction for every watched unit that no longer exists. It is the
// defense against lifecycle events the engine dropped, for example while
// the bridge was reconnecting. Returns the number of watches reconciled.
func (t *Tracker) Reconcile(ctx context.Context) (int, error) {
	live, err := t.gateway.LiveUnits(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing live units: %w", err)
	}
	alive := make(map[unit.ID]bool, len(live))
	for _, u := range live {
		alive[u.ID] = true
	}

	t.mu.RLock()
	var lost []unit.Snapshot
	for id, w := range t.watches {
		if !alive[id] {
			lost = append(lost, unit.Snapshot{ID: id, Type: w.UnitType()})
		}
	}
	t.mu.RUnlock()

	sort.Slice(lost, func(i, j int) bool { return lost[i].ID < lost[j].ID })

	var errs []error
	for _, snap := range lost {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		t.logger.Info("reconcile: watched unit no longer live", "unit", snap.ID, "type", snap.Type)
		if err := t.OnUnitDestroyed(ctx, UnitDestroyedEvent{Unit: snap}); err != nil {
			errs = append(errs, err)
		}
	}
	return len(lost), errors.Join(errs...)
}

// Queries

// IsTracked reports whether the unit currently has a watch.
func (t *Tracker) IsTracked(unitID unit.ID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hasWatch(unitID)
}

// WatchOf returns a detached copy of the unit's watch.
func (t *Tracker) WatchOf(unitID unit.ID) (*Watch, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	w, ok := t.watches[unitID]
	if !ok {
		return nil, false
	}
	return w.snapshot(), true
}

// Watches returns detached copies of all watches, ordered by unit ID.
func (t *Tracker) Watches() []*Watch {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Watch, 0, len(t.watches))
	for _, w := range t.watches {
		out = append(out, w.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitID() < out[j].UnitID() })
	return out
}

// Pending returns the queued replacement builds in insertion order.
func (t *Tracker) Pending() []*PendingBuild {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending.All()
}

// TransitOrders returns the cached post-disembark orders for a unit without
// consuming them.
func (t *Tracker) TransitOrders(unitID unit.ID) (order.Queue, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.transit.Peek(unitID)
}

// Stats returns the current table sizes.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{
		Watches:       len(t.watches),
		PendingBuilds: t.pending.Len(),
		InTransit:     t.transit.Len(),
	}
}

// Internal helpers, caller holds t.mu.

func (t *Tracker) hasWatch(unitID unit.ID) bool {
	_, ok := t.watches[unitID]
	return ok
}

func (t *Tracker) putWatch(w *Watch) {
	t.watches[w.UnitID()] = w
}

func (t *Tracker) notify(ctx context.Context, message string) {
	if t.notifier == nil {
		t.logger.Info(message)
		return
	}
	if err := t.notifier.Notify(ctx, message); err != nil {
		t.logger.Debug("notify failed", "error", err)
	}
}
