package lifecycle

import (
	"context"
	"fmt"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// UnitDestroyedCommand - Command carrying a unit destroyed engine event
type UnitDestroyedCommand struct {
	Event tracker.UnitDestroyedEvent
}

// UnitDestroyedResponse - Response from processing the destruction
type UnitDestroyedResponse struct{}

// UnitDestroyedHandler - Handles unit destroyed events
type UnitDestroyedHandler struct {
	tracker *tracker.Tracker
	journal session.JournalRepository
	sess    *session.Session
}

// NewUnitDestroyedHandler creates a new unit destroyed handler
func NewUnitDestroyedHandler(tr *tracker.Tracker, journal session.JournalRepository, sess *session.Session) *UnitDestroyedHandler {
	return &UnitDestroyedHandler{
		tracker: tr,
		journal: journal,
		sess:    sess,
	}
}

// Handle executes the unit destroyed command
func (h *UnitDestroyedHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UnitDestroyedCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.sess.RecordActivity()

	detail := "destroyed"
	if cmd.Event.AttackerID != 0 {
		detail = fmt.Sprintf("destroyed by unit %d", cmd.Event.AttackerID)
	}
	journalEvent(ctx, h.journal, session.JournalEntry{
		SessionID: h.sess.ID(),
		Event:     cmd.Event.EventName(),
		UnitID:    cmd.Event.Unit.ID,
		UnitType:  cmd.Event.Unit.Type,
		Detail:    detail,
	})

	if err := h.tracker.OnUnitDestroyed(ctx, cmd.Event); err != nil {
		return nil, fmt.Errorf("processing destruction of unit %d: %w", cmd.Event.Unit.ID, err)
	}

	return &UnitDestroyedResponse{}, nil
}
