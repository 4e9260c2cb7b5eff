package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// IssuedOrders records one IssueOrders call observed by the mock.
type IssuedOrders struct {
	UnitID unit.ID
	Orders order.Queue
}

// IssuedBuild records one IssueBuild call observed by the mock.
type IssuedBuild struct {
	FactoryID unit.ID
	UnitType  string
}

// MockEngineGateway simulates the engine world mirror for testing.
type MockEngineGateway struct {
	mu sync.RWMutex

	units      map[unit.ID]unit.Snapshot
	liveOrders map[unit.ID]order.Queue

	issuedOrders []IssuedOrders
	issuedBuilds []IssuedBuild

	issueOrdersErr error
	issueBuildErr  error
}

// NewMockEngineGateway creates an empty mock world.
func NewMockEngineGateway() *MockEngineGateway {
	return &MockEngineGateway{
		units:      make(map[unit.ID]unit.Snapshot),
		liveOrders: make(map[unit.ID]order.Queue),
	}
}

// AddUnit places a live unit into the mock world with the given order queue.
func (m *MockEngineGateway) AddUnit(snap unit.Snapshot, orders order.Queue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[snap.ID] = snap
	m.liveOrders[snap.ID] = orders.Clone()
}

// RemoveUnit deletes a unit from the mock world (simulates destruction).
func (m *MockEngineGateway) RemoveUnit(unitID unit.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.units, unitID)
	delete(m.liveOrders, unitID)
}

// SetUnitOrders replaces a unit's live queue.
func (m *MockEngineGateway) SetUnitOrders(unitID unit.ID, orders order.Queue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liveOrders[unitID] = orders.Clone()
}

// FailIssueOrders makes subsequent IssueOrders calls return err.
func (m *MockEngineGateway) FailIssueOrders(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issueOrdersErr = err
}

// FailIssueBuild makes subsequent IssueBuild calls return err.
func (m *MockEngineGateway) FailIssueBuild(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issueBuildErr = err
}

// Unit returns the snapshot for a live unit.
func (m *MockEngineGateway) Unit(ctx context.Context, unitID unit.ID) (unit.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.units[unitID]
	if !ok {
		return unit.Snapshot{}, shared.NewUnitNotFoundError(unitID)
	}
	return snap, nil
}

// LiveUnits returns all live units ordered by ID for deterministic scans.
func (m *MockEngineGateway) LiveUnits(ctx context.Context) ([]unit.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]unit.Snapshot, 0, len(m.units))
	for _, snap := range m.units {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UnitOrders returns up to depth entries of the unit's live queue.
func (m *MockEngineGateway) UnitOrders(ctx context.Context, unitID unit.ID, depth int) (order.Queue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders, ok := m.liveOrders[unitID]
	if !ok {
		return nil, shared.NewUnitNotFoundError(unitID)
	}
	if depth > 0 && depth < len(orders) {
		orders = orders[:depth]
	}
	return orders.Clone(), nil
}

// IssueOrders records the call and mirrors the sequence into the unit's
// live queue.
func (m *MockEngineGateway) IssueOrders(ctx context.Context, unitID unit.ID, orders order.Queue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.issueOrdersErr != nil {
		return m.issueOrdersErr
	}
	m.issuedOrders = append(m.issuedOrders, IssuedOrders{UnitID: unitID, Orders: orders.Clone()})
	if _, ok := m.units[unitID]; ok {
		m.liveOrders[unitID] = orders.Clone()
	}
	return nil
}

// IssueBuild records the call.
func (m *MockEngineGateway) IssueBuild(ctx context.Context, factoryID unit.ID, unitType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.issueBuildErr != nil {
		return m.issueBuildErr
	}
	m.issuedBuilds = append(m.issuedBuilds, IssuedBuild{FactoryID: factoryID, UnitType: unitType})
	return nil
}

// IssuedOrderCalls returns all recorded IssueOrders calls in order.
func (m *MockEngineGateway) IssuedOrderCalls() []IssuedOrders {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]IssuedOrders{}, m.issuedOrders...)
}

// IssuedBuildCalls returns all recorded IssueBuild calls in order.
func (m *MockEngineGateway) IssuedBuildCalls() []IssuedBuild {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]IssuedBuild{}, m.issuedBuilds...)
}

// LastIssuedTo returns the most recent order sequence sent to the unit.
func (m *MockEngineGateway) LastIssuedTo(unitID unit.ID) (order.Queue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.issuedOrders) - 1; i >= 0; i-- {
		if m.issuedOrders[i].UnitID == unitID {
			return m.issuedOrders[i].Orders.Clone(), true
		}
	}
	return nil, false
}

// Reset clears all state (useful between test scenarios).
func (m *MockEngineGateway) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units = make(map[unit.ID]unit.Snapshot)
	m.liveOrders = make(map[unit.ID]order.Queue)
	m.issuedOrders = nil
	m.issuedBuilds = nil
	m.issueOrdersErr = nil
	m.issueBuildErr = nil
}
