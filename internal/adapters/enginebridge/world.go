package enginebridge

import (
	"sort"
	"sync"

	"github.com/rtsops/reinforce/internal/domain/unit"
)

// Mirror is the daemon's copy of the player's world state, refreshed by the
// mod's periodic world_update pushes. Queries answer from here instead of
// round-tripping to the engine, so reads are cheap and never block the game.
//
// Lifecycle events patch the mirror immediately because the next periodic
// update may be many frames away.
type Mirror struct {
	mu    sync.RWMutex
	frame int
	units map[unit.ID]UnitData
}

func NewMirror() *Mirror {
	return &Mirror{units: make(map[unit.ID]UnitData)}
}

// ApplyUpdate replaces the mirrored world with the pushed snapshot.
func (m *Mirror) ApplyUpdate(update WorldUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frame = update.Frame
	m.units = make(map[unit.ID]UnitData, len(update.Units))
	for _, u := range update.Units {
		m.units[u.ID] = u
	}
}

// UpsertUnit patches a single unit into the mirror, replacing any previous
// entry with the same ID.
func (m *Mirror) UpsertUnit(u UnitData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[u.ID] = u
}

// RemoveUnit drops a unit from the mirror. Missing IDs are a no-op.
func (m *Mirror) RemoveUnit(id unit.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.units, id)
}

// Unit returns the mirrored data for one unit.
func (m *Mirror) Unit(id unit.ID) (UnitData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[id]
	return u, ok
}

// Units returns all mirrored units sorted by ID.
func (m *Mirror) Units() []UnitData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	units := make([]UnitData, 0, len(m.units))
	for _, u := range m.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units
}

// Frame returns the engine frame of the last applied update.
func (m *Mirror) Frame() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame
}

// Len returns the number of mirrored units.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.units)
}
