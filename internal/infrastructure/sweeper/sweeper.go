// Package sweeper schedules the periodic reconcile sweep. Engine events
// normally keep the tracker honest; the sweep catches watches that drifted
// because an event never arrived.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/application/lifecycle"
)

// MediatorSource exposes the mediator of the currently running session.
type MediatorSource interface {
	CurrentMediator() (common.Mediator, bool)
}

// Sweeper runs ReconcileCommand against the active session on a cron
// schedule. Between sessions each tick is a no-op.
type Sweeper struct {
	schedule string
	sessions MediatorSource
	logger   *slog.Logger

	cron *cron.Cron
}

func New(schedule string, sessions MediatorSource, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		schedule: schedule,
		sessions: sessions,
		logger:   logger,
	}
}

// Start validates the schedule and begins ticking.
func (s *Sweeper) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("reconcile sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	med, ok := s.sessions.CurrentMediator()
	if !ok {
		return
	}

	ctx := common.WithLogger(context.Background(), common.NewSlogSessionLogger(s.logger))
	resp, err := med.Send(ctx, &lifecycle.ReconcileCommand{})
	if err != nil {
		s.logger.Warn("reconcile sweep failed", "error", err)
		return
	}

	if result, ok := resp.(*lifecycle.ReconcileResponse); ok && result.Reconciled > 0 {
		s.logger.Info("reconcile sweep adjusted watches", "reconciled", result.Reconciled)
	}
}
