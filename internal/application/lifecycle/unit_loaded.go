package lifecycle

import (
	"context"
	"fmt"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// UnitLoadedCommand - Command carrying a transport load engine event
type UnitLoadedCommand struct {
	Event tracker.UnitLoadedEvent
}

// UnitLoadedResponse - Response from processing the load
type UnitLoadedResponse struct{}

// UnitLoadedHandler - Handles transport load events
type UnitLoadedHandler struct {
	tracker *tracker.Tracker
	journal session.JournalRepository
	sess    *session.Session
}

// NewUnitLoadedHandler creates a new unit loaded handler
func NewUnitLoadedHandler(tr *tracker.Tracker, journal session.JournalRepository, sess *session.Session) *UnitLoadedHandler {
	return &UnitLoadedHandler{
		tracker: tr,
		journal: journal,
		sess:    sess,
	}
}

// Handle executes the unit loaded command
func (h *UnitLoadedHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UnitLoadedCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.sess.RecordActivity()

	journalEvent(ctx, h.journal, session.JournalEntry{
		SessionID: h.sess.ID(),
		Event:     cmd.Event.EventName(),
		UnitID:    cmd.Event.Unit.ID,
		UnitType:  cmd.Event.Unit.Type,
		Detail:    fmt.Sprintf("loaded onto transport %d", cmd.Event.TransportID),
	})

	if err := h.tracker.OnUnitLoaded(ctx, cmd.Event); err != nil {
		return nil, fmt.Errorf("processing load of unit %d: %w", cmd.Event.Unit.ID, err)
	}

	return &UnitLoadedResponse{}, nil
}
