package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/rtsops/reinforce/internal/domain/shared"
)

// Status is the lifecycle phase of a tracking session.
type Status string

const (
	// StatusPending means the session exists but the engine handshake
	// has not completed yet.
	StatusPending Status = "PENDING"

	// StatusRunning means events are flowing over the bridge.
	StatusRunning Status = "RUNNING"

	// StatusCompleted means the engine said goodbye cleanly.
	StatusCompleted Status = "COMPLETED"

	// StatusFailed means the session ended on an error.
	StatusFailed Status = "FAILED"

	// StatusStopped means an operator shut the session down.
	StatusStopped Status = "STOPPED"
)

// Session represents one engine connection's lifetime: from the bridge
// handshake until the game ends or the daemon is told to stop. The tracker
// state lives and dies with its session.
//
// Transitions follow PENDING → RUNNING → COMPLETED/FAILED/STOPPED. The
// session stamps its own timestamps from the injected clock, so callers
// never supply time and tests can drive it.
type Session struct {
	id      string
	gameID  string
	mapName string
	team    int

	status    Status
	createdAt time.Time
	updatedAt time.Time
	startedAt *time.Time
	stoppedAt *time.Time
	lastErr   error
	clock     shared.Clock
}

// NewSession creates a session in PENDING state.
func NewSession(id, gameID, mapName string, team int, clock shared.Clock) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.NewInvalidSessionDataError("session id is required")
	}
	if team < 0 {
		return nil, shared.NewInvalidSessionDataError("team must not be negative")
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	now := clock.Now()
	return &Session{
		id:        id,
		gameID:    gameID,
		mapName:   mapName,
		team:      team,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
		clock:     clock,
	}, nil
}

// Getters

func (s *Session) ID() string {
	return s.id
}

func (s *Session) GameID() string {
	return s.gameID
}

func (s *Session) MapName() string {
	return s.mapName
}

func (s *Session) Team() int {
	return s.team
}

func (s *Session) Status() Status {
	return s.status
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) UpdatedAt() time.Time {
	return s.updatedAt
}

func (s *Session) StartedAt() *time.Time {
	return s.startedAt
}

func (s *Session) StoppedAt() *time.Time {
	return s.stoppedAt
}

func (s *Session) LastError() error {
	return s.lastErr
}

func (s *Session) IsRunning() bool {
	return s.status == StatusRunning
}

// IsFinished reports whether the session reached a terminal status.
func (s *Session) IsFinished() bool {
	return s.status == StatusCompleted ||
		s.status == StatusFailed ||
		s.status == StatusStopped
}

// RuntimeDuration returns how long the session has been or was running.
// A session that never started has zero runtime.
func (s *Session) RuntimeDuration() time.Duration {
	if s.startedAt == nil {
		return 0
	}
	end := s.clock.Now()
	if s.stoppedAt != nil {
		end = *s.stoppedAt
	}
	return end.Sub(*s.startedAt)
}

// Lifecycle transitions

// Start marks the session RUNNING once the engine handshake completes.
func (s *Session) Start() error {
	if s.status != StatusPending {
		return fmt.Errorf("cannot start a %s session", s.status)
	}
	now := s.clock.Now()
	s.status = StatusRunning
	s.startedAt = &now
	s.updatedAt = now
	return nil
}

// Complete marks the session COMPLETED after a clean engine goodbye.
func (s *Session) Complete() error {
	if s.status != StatusRunning {
		return fmt.Errorf("cannot complete a %s session", s.status)
	}
	s.close(StatusCompleted)
	return nil
}

// Fail marks the session FAILED with the terminating error. A session
// that completed or was stopped keeps its status; a repeated failure
// keeps the latest error.
func (s *Session) Fail(err error) error {
	if s.status == StatusCompleted || s.status == StatusStopped {
		return fmt.Errorf("cannot fail a %s session", s.status)
	}
	s.lastErr = err
	s.close(StatusFailed)
	return nil
}

// Stop marks the session STOPPED by operator request. Stopping a failed
// session is allowed and preserves its last error.
func (s *Session) Stop() error {
	if s.status == StatusCompleted || s.status == StatusStopped {
		return fmt.Errorf("cannot stop a %s session", s.status)
	}
	s.close(StatusStopped)
	return nil
}

// RecordActivity refreshes the session's updated timestamp when an event
// is processed without changing lifecycle state.
func (s *Session) RecordActivity() {
	s.updatedAt = s.clock.Now()
}

// close stamps the terminal status and stop time.
func (s *Session) close(st Status) {
	now := s.clock.Now()
	s.status = st
	s.stoppedAt = &now
	s.updatedAt = now
}
