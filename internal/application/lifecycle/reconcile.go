package lifecycle

import (
	"context"
	"fmt"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// ReconcileCommand - Command to sweep watches against the live world
type ReconcileCommand struct{}

// ReconcileResponse - Response with the number of reconciled watches
type ReconcileResponse struct {
	Reconciled int
}

// ReconcileHandler - Handles periodic reconciliation sweeps
type ReconcileHandler struct {
	tracker *tracker.Tracker
	journal session.JournalRepository
	sess    *session.Session
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(tr *tracker.Tracker, journal session.JournalRepository, sess *session.Session) *ReconcileHandler {
	return &ReconcileHandler{
		tracker: tr,
		journal: journal,
		sess:    sess,
	}
}

// Handle executes the reconcile command
func (h *ReconcileHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ReconcileCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	reconciled, err := h.tracker.Reconcile(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconciling watches: %w", err)
	}

	if reconciled > 0 {
		h.sess.RecordActivity()
		journalEvent(ctx, h.journal, session.JournalEntry{
			SessionID: h.sess.ID(),
			Event:     session.JournalEventReconciled,
			Detail:    fmt.Sprintf("%d watched units no longer live", reconciled),
		})
	}

	return &ReconcileResponse{Reconciled: reconciled}, nil
}
