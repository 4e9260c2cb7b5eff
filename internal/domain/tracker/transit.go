package tracker

import (
	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// TransitCache holds the post-disembark order queue for units currently
// riding a transport. Entries live from the load event until the matching
// unload, or until the unit dies embarked.
type TransitCache struct {
	entries map[unit.ID]order.Queue
}

// NewTransitCache creates an empty transit cache.
func NewTransitCache() *TransitCache {
	return &TransitCache{entries: make(map[unit.ID]order.Queue)}
}

// Put stores the orders to restore for the given unit, replacing any
// previous entry.
func (tc *TransitCache) Put(unitID unit.ID, orders order.Queue) {
	tc.entries[unitID] = orders.Clone()
}

// Take removes and returns the cached orders for the given unit.
func (tc *TransitCache) Take(unitID unit.ID) (order.Queue, bool) {
	orders, ok := tc.entries[unitID]
	if !ok {
		return nil, false
	}
	delete(tc.entries, unitID)
	return orders, true
}

// Peek returns the cached orders without consuming them.
func (tc *TransitCache) Peek(unitID unit.ID) (order.Queue, bool) {
	orders, ok := tc.entries[unitID]
	if !ok {
		return nil, false
	}
	return orders.Clone(), true
}

// Drop discards any entry for the given unit. Dropping an absent entry is a
// no-op.
func (tc *TransitCache) Drop(unitID unit.ID) {
	delete(tc.entries, unitID)
}

// Len returns the number of units with cached orders.
func (tc *TransitCache) Len() int {
	return len(tc.entries)
}
