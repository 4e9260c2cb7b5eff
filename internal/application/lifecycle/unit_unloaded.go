package lifecycle

import (
	"context"
	"fmt"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// UnitUnloadedCommand - Command carrying a transport unload engine event
type UnitUnloadedCommand struct {
	Event tracker.UnitUnloadedEvent
}

// UnitUnloadedResponse - Response from processing the unload
type UnitUnloadedResponse struct{}

// UnitUnloadedHandler - Handles transport unload events
type UnitUnloadedHandler struct {
	tracker *tracker.Tracker
	journal session.JournalRepository
	sess    *session.Session
}

// NewUnitUnloadedHandler creates a new unit unloaded handler
func NewUnitUnloadedHandler(tr *tracker.Tracker, journal session.JournalRepository, sess *session.Session) *UnitUnloadedHandler {
	return &UnitUnloadedHandler{
		tracker: tr,
		journal: journal,
		sess:    sess,
	}
}

// Handle executes the unit unloaded command
func (h *UnitUnloadedHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UnitUnloadedCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.sess.RecordActivity()

	journalEvent(ctx, h.journal, session.JournalEntry{
		SessionID: h.sess.ID(),
		Event:     cmd.Event.EventName(),
		UnitID:    cmd.Event.Unit.ID,
		UnitType:  cmd.Event.Unit.Type,
		Detail:    fmt.Sprintf("unloaded from transport %d", cmd.Event.TransportID),
	})

	if err := h.tracker.OnUnitUnloaded(ctx, cmd.Event); err != nil {
		return nil, fmt.Errorf("processing unload of unit %d: %w", cmd.Event.Unit.ID, err)
	}

	return &UnitUnloadedResponse{}, nil
}
