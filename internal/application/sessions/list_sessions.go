package sessions

import (
	"context"
	"fmt"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
)

// ListSessionsQuery - Query for recorded sessions, newest first
type ListSessionsQuery struct {
	Limit int `json:"limit"`
}

// ListSessionsResponse - Response with recorded sessions
type ListSessionsResponse struct {
	Sessions []session.Record `json:"sessions"`
}

// ListSessionsHandler - Handles session listing queries
type ListSessionsHandler struct {
	repo session.Repository
}

// NewListSessionsHandler creates a new list sessions handler
func NewListSessionsHandler(repo session.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{repo: repo}
}

// Handle executes the list sessions query
func (h *ListSessionsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListSessionsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	records, err := h.repo.List(ctx, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return &ListSessionsResponse{Sessions: records}, nil
}
