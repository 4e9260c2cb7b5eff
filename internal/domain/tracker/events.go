package tracker

import "github.com/rtsops/reinforce/internal/domain/unit"

// Event is a unit lifecycle notification delivered by the engine.
//
// Handlers assume the engine delivers events in causal order for any single
// unit: a destruction arrives without a trailing unload for the same unit,
// and a factory completion arrives before any load event for the freshly
// built unit. The periodic reconciliation sweep covers events the engine
// dropped; it does not repair reordered ones.
type Event interface {
	// EventName returns the stable event identifier used for logging and
	// journal entries.
	EventName() string
}

// UnitDestroyedEvent fires when a unit on the tracked team is destroyed.
type UnitDestroyedEvent struct {
	Unit       unit.Snapshot // last known state, position is where it died
	AttackerID unit.ID       // 0 when the killer is unknown (self-destruct, crush)
}

func (UnitDestroyedEvent) EventName() string { return "unit_destroyed" }

// UnitBuiltEvent fires when a factory on the tracked team finishes a unit.
type UnitBuiltEvent struct {
	Unit      unit.Snapshot
	FactoryID unit.ID
}

func (UnitBuiltEvent) EventName() string { return "unit_built" }

// UnitLoadedEvent fires when a unit is carried onto a transport on the
// tracked team.
type UnitLoadedEvent struct {
	Unit        unit.Snapshot
	TransportID unit.ID
}

func (UnitLoadedEvent) EventName() string { return "unit_loaded" }

// UnitUnloadedEvent fires when a unit disembarks from a transport on the
// tracked team.
type UnitUnloadedEvent struct {
	Unit        unit.Snapshot
	TransportID unit.ID
}

func (UnitUnloadedEvent) EventName() string { return "unit_unloaded" }
