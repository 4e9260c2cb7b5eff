package tracker

import (
	"time"

	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// Watch is the replacement record attached to a tagged unit. It carries the
// order queue captured at tag time (or inherited from a destroyed
// predecessor) so the orders outlive the unit itself.
//
// Invariants:
// - orders always starts with the synthetic MOVE to the capture position
//   when created by tagging; inherited watches keep the predecessor's queue
// - factoryOrders is only populated between factory completion and the
//   first transport pickup, and is cleared once consumed
type Watch struct {
	unitID        unit.ID
	unitType      string
	orders        order.Queue
	factoryOrders order.Queue
	createdAt     time.Time
}

// NewWatch creates a watch for the given unit holding the captured orders.
func NewWatch(unitID unit.ID, unitType string, orders order.Queue, clock shared.Clock) *Watch {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Watch{
		unitID:    unitID,
		unitType:  unitType,
		orders:    orders.Clone(),
		createdAt: clock.Now(),
	}
}

// Getters

func (w *Watch) UnitID() unit.ID {
	return w.unitID
}

func (w *Watch) UnitType() string {
	return w.unitType
}

// Orders returns a copy of the captured order queue.
func (w *Watch) Orders() order.Queue {
	return w.orders.Clone()
}

// FactoryOrders returns a copy of the factory-assigned order queue, empty
// unless the unit just left a factory.
func (w *Watch) FactoryOrders() order.Queue {
	return w.factoryOrders.Clone()
}

func (w *Watch) CreatedAt() time.Time {
	return w.createdAt
}

// HasFactoryOrders reports whether factory-assigned orders are still held.
func (w *Watch) HasFactoryOrders() bool {
	return len(w.factoryOrders) > 0
}

// Mutations

// AssignFactoryOrders records the rally queue the producing factory gave the
// unit. Held so a later transport pickup can tell rally artifacts apart from
// genuine destinations.
func (w *Watch) AssignFactoryOrders(orders order.Queue) {
	w.factoryOrders = orders.Clone()
}

// ClearFactoryOrders drops the factory-assigned queue once it has been
// consumed by a transport pickup.
func (w *Watch) ClearFactoryOrders() {
	w.factoryOrders = nil
}

// snapshot returns a detached copy safe to hand outside the tracker's lock.
func (w *Watch) snapshot() *Watch {
	return &Watch{
		unitID:        w.unitID,
		unitType:      w.unitType,
		orders:        w.orders.Clone(),
		factoryOrders: w.factoryOrders.Clone(),
		createdAt:     w.createdAt,
	}
}
