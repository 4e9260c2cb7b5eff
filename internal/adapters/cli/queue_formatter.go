package cli

import (
	"fmt"
	"strings"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// QueueFormatter renders captured order queues as trees
type QueueFormatter struct{}

// NewQueueFormatter creates a new queue formatter
func NewQueueFormatter() *QueueFormatter {
	return &QueueFormatter{}
}

// FormatWatch renders one watch with its order queue and factory hold
func (f *QueueFormatter) FormatWatch(w daemonctl.WatchInfo) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("unit %d (%s)\n", w.UnitID, w.UnitType))

	hasFactory := len(w.FactoryOrders) > 0
	f.formatBranch(&builder, w.Orders, "", !hasFactory)

	if hasFactory {
		builder.WriteString("└── factory hold\n")
		f.formatBranch(&builder, w.FactoryOrders, "    ", true)
	}

	return builder.String()
}

// formatBranch writes one order list at the given indent level
func (f *QueueFormatter) formatBranch(builder *strings.Builder, orders []string, prefix string, closeBranch bool) {
	if len(orders) == 0 {
		if closeBranch {
			builder.WriteString(prefix + "└── (no orders)\n")
		}
		return
	}

	for i, o := range orders {
		connector := "├── "
		if closeBranch && i == len(orders)-1 {
			connector = "└── "
		}
		builder.WriteString(prefix + connector + o + "\n")
	}
}

// FormatCompact renders a queue as a single arrow-joined line
func (f *QueueFormatter) FormatCompact(orders []string) string {
	if len(orders) == 0 {
		return "(empty)"
	}
	return strings.Join(orders, " → ")
}
