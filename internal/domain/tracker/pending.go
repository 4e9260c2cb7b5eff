package tracker

import (
	"sort"
	"time"

	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// PendingBuild is a queued replacement: a build order has been issued at a
// factory and the destroyed unit's orders wait for a unit of that type to
// roll out.
type PendingBuild struct {
	unitType  string
	factoryID unit.ID
	orders    order.Queue
	queuedAt  time.Time
	seq       uint64
}

func (p *PendingBuild) UnitType() string {
	return p.unitType
}

func (p *PendingBuild) FactoryID() unit.ID {
	return p.factoryID
}

func (p *PendingBuild) Orders() order.Queue {
	return p.orders.Clone()
}

func (p *PendingBuild) QueuedAt() time.Time {
	return p.queuedAt
}

// PendingBuilds holds queued replacements as one FIFO per unit type, so
// several losses of the same type are matched to factory completions in the
// order the losses happened.
type PendingBuilds struct {
	byType  map[string][]*PendingBuild
	nextSeq uint64
}

// NewPendingBuilds creates an empty pending build table.
func NewPendingBuilds() *PendingBuilds {
	return &PendingBuilds{byType: make(map[string][]*PendingBuild)}
}

// Push queues a replacement for the given unit type.
func (pb *PendingBuilds) Push(unitType string, factoryID unit.ID, orders order.Queue, queuedAt time.Time) *PendingBuild {
	entry := &PendingBuild{
		unitType:  unitType,
		factoryID: factoryID,
		orders:    orders.Clone(),
		queuedAt:  queuedAt,
		seq:       pb.nextSeq,
	}
	pb.nextSeq++
	pb.byType[unitType] = append(pb.byType[unitType], entry)
	return entry
}

// Pop consumes the oldest pending entry for the given unit type. Each entry
// is consumed at most once; remaining same-type entries stay queued for the
// next completion.
func (pb *PendingBuilds) Pop(unitType string) (*PendingBuild, bool) {
	queue := pb.byType[unitType]
	if len(queue) == 0 {
		return nil, false
	}
	entry := queue[0]
	if len(queue) == 1 {
		delete(pb.byType, unitType)
	} else {
		pb.byType[unitType] = queue[1:]
	}
	return entry, true
}

// Len returns the total number of pending entries across all types.
func (pb *PendingBuilds) Len() int {
	total := 0
	for _, queue := range pb.byType {
		total += len(queue)
	}
	return total
}

// All returns every pending entry in global insertion order.
func (pb *PendingBuilds) All() []*PendingBuild {
	out := make([]*PendingBuild, 0, pb.Len())
	for _, queue := range pb.byType {
		out = append(out, queue...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
