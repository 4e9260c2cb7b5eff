package tracking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/tracker"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// TagUnitsCommand - Command to mark the given units for replacement
type TagUnitsCommand struct {
	UnitIDs []unit.ID
}

// TagUnitsResponse - Response from tag units command
type TagUnitsResponse struct {
	Tagged int
}

// TagUnitsHandler - Handles tag units commands
type TagUnitsHandler struct {
	tracker   *tracker.Tracker
	journal   session.JournalRepository
	sessionID string
}

// NewTagUnitsHandler creates a new tag units handler
func NewTagUnitsHandler(tr *tracker.Tracker, journal session.JournalRepository, sessionID string) *TagUnitsHandler {
	return &TagUnitsHandler{
		tracker:   tr,
		journal:   journal,
		sessionID: sessionID,
	}
}

// Handle executes the tag units command
func (h *TagUnitsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*TagUnitsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	// 1. Capture orders for every eligible selected unit
	tagged, err := h.tracker.Tag(ctx, cmd.UnitIDs)
	if err != nil {
		return nil, fmt.Errorf("tagging units: %w", err)
	}

	// 2. Journal the action; journaling is best-effort and never fails the command
	if h.journal != nil && tagged > 0 {
		entry := session.JournalEntry{
			SessionID: h.sessionID,
			Event:     session.JournalEventTagged,
			Detail:    fmt.Sprintf("%d of %d selected units tagged", tagged, len(cmd.UnitIDs)),
		}
		if err := h.journal.Append(ctx, entry); err != nil {
			common.LoggerFromContext(ctx).Log(slog.LevelWarn, "journal append failed", "event", entry.Event, "error", err)
		}
	}

	return &TagUnitsResponse{Tagged: tagged}, nil
}
