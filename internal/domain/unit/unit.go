package unit

import (
	"fmt"

	"github.com/rtsops/reinforce/internal/domain/shared"
)

// ID identifies a unit instance within the running game. Identifiers are
// assigned by the engine and may be recycled across games but never within
// one session.
type ID = int

// Snapshot is the engine-reported state of a live unit at a moment in time.
// The tracker never mutates snapshots; fresh ones arrive with every world
// update.
type Snapshot struct {
	ID       ID
	Type     string
	Team     int
	Position shared.Position
}

func (s Snapshot) String() string {
	return fmt.Sprintf("unit %d (%s) at %s", s.ID, s.Type, s.Position)
}

// TypeInfo describes a unit type as declared by the engine ruleset.
type TypeInfo struct {
	Name         string
	IsFactory    bool
	CanTransport bool
	Builds       []string
}

// CanBuild reports whether the type's build list includes typeName.
// Always false for non-factory types.
func (ti TypeInfo) CanBuild(typeName string) bool {
	if !ti.IsFactory {
		return false
	}
	for _, b := range ti.Builds {
		if b == typeName {
			return true
		}
	}
	return false
}
