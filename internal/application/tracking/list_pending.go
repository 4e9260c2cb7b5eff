package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// ListPendingBuildsQuery - Query for queued replacement builds
type ListPendingBuildsQuery struct{}

// PendingBuildDTO is the control-plane view of a queued replacement build
type PendingBuildDTO struct {
	UnitType  string    `json:"unit_type"`
	FactoryID int       `json:"factory_id"`
	Orders    []string  `json:"orders"`
	QueuedAt  time.Time `json:"queued_at"`
}

// ListPendingBuildsResponse - Response with pending builds in insertion order
type ListPendingBuildsResponse struct {
	Builds []PendingBuildDTO `json:"builds"`
}

// ListPendingBuildsHandler - Handles list pending builds queries
type ListPendingBuildsHandler struct {
	tracker *tracker.Tracker
}

// NewListPendingBuildsHandler creates a new list pending builds handler
func NewListPendingBuildsHandler(tr *tracker.Tracker) *ListPendingBuildsHandler {
	return &ListPendingBuildsHandler{tracker: tr}
}

// Handle executes the list pending builds query
func (h *ListPendingBuildsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ListPendingBuildsQuery); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	pending := h.tracker.Pending()
	dtos := make([]PendingBuildDTO, 0, len(pending))
	for _, pb := range pending {
		dtos = append(dtos, PendingBuildDTO{
			UnitType:  pb.UnitType(),
			FactoryID: pb.FactoryID(),
			Orders:    renderOrders(pb.Orders()),
			QueuedAt:  pb.QueuedAt(),
		})
	}

	return &ListPendingBuildsResponse{Builds: dtos}, nil
}
