package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// GetStatusQuery - Query for the active session's status
type GetStatusQuery struct{}

// StatusDTO is the control-plane view of the active session
type StatusDTO struct {
	SessionID     string        `json:"session_id"`
	GameID        string        `json:"game_id,omitempty"`
	MapName       string        `json:"map_name"`
	Team          int           `json:"team"`
	Status        string        `json:"status"`
	Uptime        time.Duration `json:"uptime"`
	Watches       int           `json:"watches"`
	PendingBuilds int           `json:"pending_builds"`
	InTransit     int           `json:"in_transit"`
}

// GetStatusResponse - Response with the active session status
type GetStatusResponse struct {
	Status StatusDTO `json:"status"`
}

// GetStatusHandler - Handles session status queries
type GetStatusHandler struct {
	sess    *session.Session
	tracker *tracker.Tracker
}

// NewGetStatusHandler creates a new get status handler
func NewGetStatusHandler(sess *session.Session, tr *tracker.Tracker) *GetStatusHandler {
	return &GetStatusHandler{sess: sess, tracker: tr}
}

// Handle executes the get status query
func (h *GetStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*GetStatusQuery); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	stats := h.tracker.Stats()
	return &GetStatusResponse{Status: StatusDTO{
		SessionID:     h.sess.ID(),
		GameID:        h.sess.GameID(),
		MapName:       h.sess.MapName(),
		Team:          h.sess.Team(),
		Status:        string(h.sess.Status()),
		Uptime:        h.sess.RuntimeDuration(),
		Watches:       stats.Watches,
		PendingBuilds: stats.PendingBuilds,
		InTransit:     stats.InTransit,
	}}, nil
}
