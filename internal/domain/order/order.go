package order

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rtsops/reinforce/internal/domain/shared"
)

// Kind identifies an order verb understood by the engine. The set is open:
// the engine may report kinds beyond the ones named here and they pass
// through the tracker untouched.
type Kind string

const (
	KindMove   Kind = "MOVE"
	KindWait   Kind = "WAIT"
	KindStop   Kind = "STOP"
	KindUnload Kind = "UNLOAD"
	KindFight  Kind = "FIGHT"
	KindPatrol Kind = "PATROL"
	KindGuard  Kind = "GUARD"
	KindAttack Kind = "ATTACK"
	KindLoad   Kind = "LOAD"
	KindRepair Kind = "REPAIR"
)

// Order is a single directive for a unit: a verb plus its numeric
// parameters, usually world coordinates.
//
// Two orders are equal when their kind and full parameter sequence match
// exactly. Queued is dispatch metadata (append after the current queue
// instead of replacing it) and takes no part in equality.
type Order struct {
	Kind   Kind
	Params []float64
	Queued bool
}

// New creates an order of the given kind with the given parameters.
func New(kind Kind, params ...float64) Order {
	return Order{Kind: kind, Params: params}
}

// Move creates a MOVE order targeting the given world position.
func Move(pos shared.Position) Order {
	return Order{Kind: KindMove, Params: pos.Params()}
}

// Stop creates a STOP order.
func Stop() Order {
	return Order{Kind: KindStop}
}

// UnloadAt creates an UNLOAD order targeting the given world position.
func UnloadAt(pos shared.Position) Order {
	return Order{Kind: KindUnload, Params: pos.Params()}
}

// Equal reports whether two orders have the same kind and the same
// parameter sequence. Parameters are compared positionally with exact
// numeric match.
func (o Order) Equal(other Order) bool {
	if o.Kind != other.Kind {
		return false
	}
	if len(o.Params) != len(other.Params) {
		return false
	}
	for i := range o.Params {
		if o.Params[i] != other.Params[i] {
			return false
		}
	}
	return true
}

// IsMove reports whether the order is a MOVE order.
func (o Order) IsMove() bool {
	return o.Kind == KindMove
}

// IsWait reports whether the order is a WAIT order.
func (o Order) IsWait() bool {
	return o.Kind == KindWait
}

// TargetPosition returns the order's first three parameters as a world
// position. The second value is false when the order carries fewer than
// three parameters.
func (o Order) TargetPosition() (shared.Position, bool) {
	if len(o.Params) < 3 {
		return shared.Position{}, false
	}
	return shared.NewPosition(o.Params[0], o.Params[1], o.Params[2]), true
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	params := make([]float64, len(o.Params))
	copy(params, o.Params)
	return Order{Kind: o.Kind, Params: params, Queued: o.Queued}
}

func (o Order) String() string {
	if len(o.Params) == 0 {
		return string(o.Kind)
	}
	parts := make([]string, len(o.Params))
	for i, p := range o.Params {
		parts[i] = strconv.FormatFloat(p, 'f', -1, 64)
	}
	return fmt.Sprintf("%s(%s)", o.Kind, strings.Join(parts, ","))
}
