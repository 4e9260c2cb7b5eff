package sessions

import (
	"context"
	"fmt"
	"strings"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
)

// ListJournalQuery - Query for a session's journal entries, newest first
type ListJournalQuery struct {
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit"`
}

// ListJournalResponse - Response with journal entries
type ListJournalResponse struct {
	Entries []session.JournalEntry `json:"entries"`
}

// ListJournalHandler - Handles journal listing queries
type ListJournalHandler struct {
	journal session.JournalRepository
}

// NewListJournalHandler creates a new list journal handler
func NewListJournalHandler(journal session.JournalRepository) *ListJournalHandler {
	return &ListJournalHandler{journal: journal}
}

// Handle executes the list journal query
func (h *ListJournalHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListJournalQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	sessionID := strings.TrimSpace(query.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	entries, err := h.journal.ListBySession(ctx, sessionID, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal for session %s: %w", sessionID, err)
	}
	return &ListJournalResponse{Entries: entries}, nil
}
