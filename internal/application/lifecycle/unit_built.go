package lifecycle

import (
	"context"
	"fmt"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// UnitBuiltCommand - Command carrying a factory completion engine event
type UnitBuiltCommand struct {
	Event tracker.UnitBuiltEvent
}

// UnitBuiltResponse - Response from processing the completion
type UnitBuiltResponse struct{}

// UnitBuiltHandler - Handles factory completion events
type UnitBuiltHandler struct {
	tracker *tracker.Tracker
	journal session.JournalRepository
	sess    *session.Session
}

// NewUnitBuiltHandler creates a new unit built handler
func NewUnitBuiltHandler(tr *tracker.Tracker, journal session.JournalRepository, sess *session.Session) *UnitBuiltHandler {
	return &UnitBuiltHandler{
		tracker: tr,
		journal: journal,
		sess:    sess,
	}
}

// Handle executes the unit built command
func (h *UnitBuiltHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UnitBuiltCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.sess.RecordActivity()

	journalEvent(ctx, h.journal, session.JournalEntry{
		SessionID: h.sess.ID(),
		Event:     cmd.Event.EventName(),
		UnitID:    cmd.Event.Unit.ID,
		UnitType:  cmd.Event.Unit.Type,
		Detail:    fmt.Sprintf("completed at factory %d", cmd.Event.FactoryID),
	})

	if err := h.tracker.OnUnitBuilt(ctx, cmd.Event); err != nil {
		return nil, fmt.Errorf("processing completion of unit %d: %w", cmd.Event.Unit.ID, err)
	}

	return &UnitBuiltResponse{}, nil
}
