package shared

import (
	"fmt"
	"math"
)

// Position is a point in engine world space. Y is elevation; ground
// movement happens on the XZ plane.
type Position struct {
	X float64
	Y float64
	Z float64
}

// NewPosition creates a Position from world coordinates.
func NewPosition(x, y, z float64) Position {
	return Position{X: x, Y: y, Z: z}
}

// DistanceTo returns the full 3D distance between two positions.
func (p Position) DistanceTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// GroundDistanceTo returns the distance on the XZ plane, ignoring elevation.
func (p Position) GroundDistanceTo(other Position) float64 {
	dx := p.X - other.X
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Params returns the position as an order parameter sequence.
func (p Position) Params() []float64 {
	return []float64{p.X, p.Y, p.Z}
}

func (p Position) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", p.X, p.Y, p.Z)
}
