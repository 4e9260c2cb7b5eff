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

// UntagUnitsCommand - Command to remove replacement watches from the given units
type UntagUnitsCommand struct {
	UnitIDs []unit.ID
}

// UntagUnitsResponse - Response from untag units command
type UntagUnitsResponse struct {
	Removed int
}

// UntagUnitsHandler - Handles untag units commands
type UntagUnitsHandler struct {
	tracker   *tracker.Tracker
	journal   session.JournalRepository
	sessionID string
}

// NewUntagUnitsHandler creates a new untag units handler
func NewUntagUnitsHandler(tr *tracker.Tracker, journal session.JournalRepository, sessionID string) *UntagUnitsHandler {
	return &UntagUnitsHandler{
		tracker:   tr,
		journal:   journal,
		sessionID: sessionID,
	}
}

// Handle executes the untag units command
func (h *UntagUnitsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UntagUnitsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	removed, err := h.tracker.Untag(ctx, cmd.UnitIDs)
	if err != nil {
		return nil, fmt.Errorf("untagging units: %w", err)
	}

	if h.journal != nil && removed > 0 {
		entry := session.JournalEntry{
			SessionID: h.sessionID,
			Event:     session.JournalEventUntagged,
			Detail:    fmt.Sprintf("%d watches removed", removed),
		}
		if err := h.journal.Append(ctx, entry); err != nil {
			common.LoggerFromContext(ctx).Log(slog.LevelWarn, "journal append failed", "event", entry.Event, "error", err)
		}
	}

	return &UntagUnitsResponse{Removed: removed}, nil
}
