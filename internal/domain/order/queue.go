package order

import "strings"

// Queue is an ordered sequence of orders as held by a unit.
type Queue []Order

// Clone returns a deep copy of the queue.
func (q Queue) Clone() Queue {
	if q == nil {
		return nil
	}
	out := make(Queue, len(q))
	for i, o := range q {
		out[i] = o.Clone()
	}
	return out
}

// Contains reports whether any order in the queue equals o.
func (q Queue) Contains(o Order) bool {
	for _, existing := range q {
		if existing.Equal(o) {
			return true
		}
	}
	return false
}

// Filter returns the subsequence of q that represents genuine intent:
// WAIT orders and orders already present in the factory-assigned sequence
// are dropped, everything else keeps its relative position. Both dropped
// classes are artifacts of the factory handoff, not destinations the unit
// was actually given.
func (q Queue) Filter(factory Queue) Queue {
	out := make(Queue, 0, len(q))
	for _, o := range q {
		if o.IsWait() {
			continue
		}
		if factory.Contains(o) {
			continue
		}
		out = append(out, o.Clone())
	}
	return out
}

// LastMove returns the final MOVE order in the queue. The second value is
// false when the queue holds no MOVE order.
func (q Queue) LastMove() (Order, bool) {
	for i := len(q) - 1; i >= 0; i-- {
		if q[i].IsMove() {
			return q[i], true
		}
	}
	return Order{}, false
}

// Equal reports whether both queues hold equal orders in the same sequence.
func (q Queue) Equal(other Queue) bool {
	if len(q) != len(other) {
		return false
	}
	for i := range q {
		if !q[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the queue holds no orders.
func (q Queue) IsEmpty() bool {
	return len(q) == 0
}

func (q Queue) String() string {
	if len(q) == 0 {
		return "[]"
	}
	parts := make([]string, len(q))
	for i, o := range q {
		parts[i] = o.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
