package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// ListWatchesQuery - Query for all active replacement watches
type ListWatchesQuery struct{}

// WatchDTO is the control-plane view of a watch
type WatchDTO struct {
	UnitID        int       `json:"unit_id"`
	UnitType      string    `json:"unit_type"`
	Orders        []string  `json:"orders"`
	FactoryOrders []string  `json:"factory_orders,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListWatchesResponse - Response with all active watches ordered by unit ID
type ListWatchesResponse struct {
	Watches []WatchDTO `json:"watches"`
}

// ListWatchesHandler - Handles list watches queries
type ListWatchesHandler struct {
	tracker *tracker.Tracker
}

// NewListWatchesHandler creates a new list watches handler
func NewListWatchesHandler(tr *tracker.Tracker) *ListWatchesHandler {
	return &ListWatchesHandler{tracker: tr}
}

// Handle executes the list watches query
func (h *ListWatchesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ListWatchesQuery); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	watches := h.tracker.Watches()
	dtos := make([]WatchDTO, 0, len(watches))
	for _, w := range watches {
		dtos = append(dtos, WatchDTO{
			UnitID:        w.UnitID(),
			UnitType:      w.UnitType(),
			Orders:        renderOrders(w.Orders()),
			FactoryOrders: renderOrders(w.FactoryOrders()),
			CreatedAt:     w.CreatedAt(),
		})
	}

	return &ListWatchesResponse{Watches: dtos}, nil
}

// renderOrders formats a queue for display, one string per order.
func renderOrders(q order.Queue) []string {
	if len(q) == 0 {
		return nil
	}
	out := make([]string, len(q))
	for i, o := range q {
		out[i] = o.String()
	}
	return out
}
