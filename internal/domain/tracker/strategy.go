package tracker

import (
	"context"
	"fmt"

	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// Loss describes a destroyed tracked unit whose orders need a new home.
type Loss struct {
	Unit   unit.Snapshot // last snapshot, position is where it died
	Orders order.Queue   // the watch's captured queue
}

// ReplacementStrategy decides how a loss propagates. Strategies are
// consulted in configured order until one reports the loss handled.
//
// This keeps the destruction handler closed while replacement policies stay
// extensible: adopting an idle sibling and queuing a factory build are
// separate strategies today, and variants (nearest sibling, cheapest
// factory) slot in without touching the handler.
//
// Propose is called with the tracker's lock held; implementations may touch
// tracker state directly but must not call the tracker's public methods.
type ReplacementStrategy interface {
	// Propose attempts to re-home the loss. handled reports whether the
	// strategy took responsibility; err reports a failure while doing so.
	// A handled loss is final even when err is non-nil.
	Propose(ctx context.Context, t *Tracker, loss Loss) (handled bool, err error)

	// StrategyName returns a stable name for configuration and logging.
	StrategyName() string
}

// StrategyAdoptSibling and StrategyFactoryBuild are the configuration names
// of the built-in strategies.
const (
	StrategyAdoptSibling = "adopt_sibling"
	StrategyFactoryBuild = "factory_build"
)

// StrategyByName resolves a configuration name to a strategy instance.
func StrategyByName(name string) (ReplacementStrategy, error) {
	switch name {
	case StrategyAdoptSibling:
		return NewAdoptSiblingStrategy(), nil
	case StrategyFactoryBuild:
		return NewFactoryBuildStrategy(), nil
	default:
		return nil, shared.NewValidationError("strategy", fmt.Sprintf("unknown replacement strategy %q", name))
	}
}

// AdoptSiblingStrategy re-homes a loss onto a live unit of the same type
// that is not already tracked. The sibling inherits the captured queue and
// is immediately ordered to execute it.
type AdoptSiblingStrategy struct{}

// NewAdoptSiblingStrategy creates the sibling adoption strategy.
func NewAdoptSiblingStrategy() *AdoptSiblingStrategy {
	return &AdoptSiblingStrategy{}
}

// Propose scans the live units for an untracked same-type sibling. First
// match wins; when none exists the loss is left for the next strategy.
func (s *AdoptSiblingStrategy) Propose(ctx context.Context, t *Tracker, loss Loss) (bool, error) {
	units, err := t.gateway.LiveUnits(ctx)
	if err != nil {
		return false, fmt.Errorf("listing live units: %w", err)
	}

	for _, u := range units {
		if u.Type != loss.Unit.Type || u.ID == loss.Unit.ID {
			continue
		}
		if t.hasWatch(u.ID) {
			continue
		}

		t.putWatch(NewWatch(u.ID, u.Type, loss.Orders, t.clock))

		// The watch is recorded even if issuing fails: the orders survive
		// the sibling's own destruction either way.
		if err := t.gateway.IssueOrders(ctx, u.ID, loss.Orders); err != nil {
			return true, fmt.Errorf("issuing inherited orders to unit %d: %w", u.ID, err)
		}

		t.notify(ctx, fmt.Sprintf("unit %d (%s) destroyed, orders adopted by unit %d", loss.Unit.ID, loss.Unit.Type, u.ID))
		return true, nil
	}

	return false, nil
}

// StrategyName returns the configuration name.
func (s *AdoptSiblingStrategy) StrategyName() string {
	return StrategyAdoptSibling
}

// FactoryBuildStrategy queues a fresh build of the lost type at a capable
// factory and parks the captured orders until the replacement rolls out.
type FactoryBuildStrategy struct{}

// NewFactoryBuildStrategy creates the factory build strategy.
func NewFactoryBuildStrategy() *FactoryBuildStrategy {
	return &FactoryBuildStrategy{}
}

// Propose finds the first live factory whose build list covers the lost
// type, asks it to construct one, and records a pending build that the
// factory completion handler will consume.
func (s *FactoryBuildStrategy) Propose(ctx context.Context, t *Tracker, loss Loss) (bool, error) {
	units, err := t.gateway.LiveUnits(ctx)
	if err != nil {
		return false, fmt.Errorf("listing live units: %w", err)
	}

	for _, u := range units {
		info, ok := t.catalog.Lookup(u.Type)
		if !ok || !info.CanBuild(loss.Unit.Type) {
			continue
		}

		if err := t.gateway.IssueBuild(ctx, u.ID, loss.Unit.Type); err != nil {
			return false, shared.NewReplacementError(
				fmt.Sprintf("queueing replacement build at factory %d: %v", u.ID, err),
				loss.Unit.ID,
				loss.Unit.Type,
			)
		}

		t.pending.Push(loss.Unit.Type, u.ID, loss.Orders, t.clock.Now())
		t.notify(ctx, fmt.Sprintf("unit %d (%s) destroyed, replacement queued at factory %d", loss.Unit.ID, loss.Unit.Type, u.ID))
		return true, nil
	}

	return false, nil
}

// StrategyName returns the configuration name.
func (s *FactoryBuildStrategy) StrategyName() string {
	return StrategyFactoryBuild
}
