package sessions

import (
	"context"
	"fmt"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
)

// Stopper shuts down the active game session. The engine bridge runner
// implements it by closing the engine connection and letting the session
// loop wind down.
type Stopper interface {
	StopSession(ctx context.Context) error
}

// StopSessionCommand - Command to stop the active session
type StopSessionCommand struct{}

// StopSessionResponse - Response after requesting a session stop
type StopSessionResponse struct {
	SessionID string `json:"session_id"`
}

// StopSessionHandler - Handles session stop commands
type StopSessionHandler struct {
	sess    *session.Session
	stopper Stopper
}

// NewStopSessionHandler creates a new stop session handler
func NewStopSessionHandler(sess *session.Session, stopper Stopper) *StopSessionHandler {
	return &StopSessionHandler{sess: sess, stopper: stopper}
}

// Handle executes the stop session command
func (h *StopSessionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*StopSessionCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if err := h.stopper.StopSession(ctx); err != nil {
		return nil, fmt.Errorf("failed to stop session %s: %w", h.sess.ID(), err)
	}
	return &StopSessionResponse{SessionID: h.sess.ID()}, nil
}
