package enginebridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/rtsops/reinforce/internal/adapters/keybinds"
	"github.com/rtsops/reinforce/internal/adapters/metrics"
	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/application/lifecycle"
	"github.com/rtsops/reinforce/internal/application/sessions"
	"github.com/rtsops/reinforce/internal/application/tracking"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/domain/tracker"
	"github.com/rtsops/reinforce/pkg/utils"
	"github.com/rtsops/reinforce/pkg/wire"
)

// RunnerConfig carries the per-session tuning the daemon reads from its
// configuration. Zero values fall back to built-in defaults.
type RunnerConfig struct {
	// Ordered replacement strategy chain tried on each destruction
	StrategyNames []string

	// Orders captured per unit when tagging
	CaptureDepth int

	// Engine command pacing for the session gateway
	OrderRate  float64
	OrderBurst int
}

// SessionRunner turns an accepted mod connection into a running game session.
// The handshake composes the whole session: catalog, tracker, mediator and
// dispatcher all live exactly as long as the connection. One session runs at
// a time; the daemon mirrors a single game client.
type SessionRunner struct {
	sessionRepo session.Repository
	journalRepo session.JournalRepository
	keymap      *keybinds.Keymap
	cfg         RunnerConfig
	cmdMetrics  *metrics.CommandMetricsCollector
	clock       shared.Clock
	logger      *slog.Logger

	mu     sync.RWMutex
	active *activeSession
}

// activeSession bundles everything composed at handshake time.
type activeSession struct {
	sess          *session.Session
	tracker       *tracker.Tracker
	mediator      common.Mediator
	conn          *Connection
	stopRequested bool
}

// NewSessionRunner creates a runner. cmdMetrics may be nil when metrics are
// disabled; clock nil means real time.
func NewSessionRunner(
	sessionRepo session.Repository,
	journalRepo session.JournalRepository,
	keymap *keybinds.Keymap,
	cfg RunnerConfig,
	cmdMetrics *metrics.CommandMetricsCollector,
	clock shared.Clock,
	logger *slog.Logger,
) *SessionRunner {
	if keymap == nil {
		keymap = keybinds.Default()
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRunner{
		sessionRepo: sessionRepo,
		journalRepo: journalRepo,
		keymap:      keymap,
		cfg:         cfg,
		cmdMetrics:  cmdMetrics,
		clock:       clock,
		logger:      logger,
	}
}

// HandleConn runs a mod connection to completion. It blocks until the
// connection closes, then finalizes the session it carried.
func (r *SessionRunner) HandleConn(netConn net.Conn) {
	conn := NewConnection(netConn, r.logger)
	conn.RegisterHandler(TypeHello, r.helloHandler(conn))
	conn.ReadLoop()
	r.finishSession(conn)
}

// CurrentMediator returns the active session's dispatcher, if a session is
// running. Control-plane servers route session-scoped requests through it.
func (r *SessionRunner) CurrentMediator() (common.Mediator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return nil, false
	}
	return r.active.mediator, true
}

// ActiveStats returns the active tracker's table sizes for metrics polling.
func (r *SessionRunner) ActiveStats() (tracker.Stats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return tracker.Stats{}, false
	}
	return r.active.tracker.Stats(), true
}

// StopSession closes the engine connection, which winds the session down.
// Implements the application layer's Stopper port.
func (r *SessionRunner) StopSession(ctx context.Context) error {
	r.mu.Lock()
	if r.active == nil {
		r.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	r.active.stopRequested = true
	conn := r.active.conn
	r.mu.Unlock()

	return conn.Close()
}

// helloHandler completes the handshake: it composes the session and answers
// the mod with an ack so it starts pushing world state.
func (r *SessionRunner) helloHandler(conn *Connection) Handler {
	return func(env wire.Envelope) (*wire.Envelope, error) {
		var hello HelloMessage
		if err := json.Unmarshal(env.Data, &hello); err != nil {
			return nil, fmt.Errorf("unmarshal hello: %w", err)
		}

		r.mu.Lock()
		if r.active != nil {
			r.mu.Unlock()
			r.logger.Warn("rejecting handshake, session already active", "game", hello.Game)
			busy, err := wire.NewEnvelope(TypeAck, AckMessage{Status: "busy"})
			if err != nil {
				return nil, err
			}
			return &busy, nil
		}
		r.mu.Unlock()

		active, err := r.openSession(conn, hello)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}

		r.mu.Lock()
		r.active = active
		r.mu.Unlock()
		metrics.RecordBridgeState(true)

		ack, err := wire.NewEnvelope(TypeAck, AckMessage{Status: "ok"})
		if err != nil {
			return nil, err
		}
		return &ack, nil
	}
}

// openSession builds every per-session collaborator from the handshake.
func (r *SessionRunner) openSession(conn *Connection, hello HelloMessage) (*activeSession, error) {
	sess, err := session.NewSession(utils.GenerateSessionID(hello.Map), hello.Game, hello.Map, hello.Team, r.clock)
	if err != nil {
		return nil, err
	}
	if err := sess.Start(); err != nil {
		return nil, err
	}

	sessionLogger := r.logger.With("session_id", sess.ID())

	catalog := catalogFromHello(hello.UnitTypes)
	if catalog.Len() == 0 {
		sessionLogger.Warn("handshake carried no unit-type catalog, tagging will match no units")
	}

	strategies := make([]tracker.ReplacementStrategy, 0, len(r.cfg.StrategyNames))
	for _, name := range r.cfg.StrategyNames {
		strategy, err := tracker.StrategyByName(name)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}

	mirror := NewMirror()
	gateway := NewGateway(conn, mirror, r.cfg.OrderRate, r.cfg.OrderBurst, sessionLogger)
	tr := tracker.New(gateway, gateway, catalog, strategies, r.cfg.CaptureDepth, r.clock, sessionLogger)

	med, err := r.buildMediator(sess, tr)
	if err != nil {
		return nil, err
	}

	ctx := common.WithLogger(context.Background(), common.NewSlogSessionLogger(sessionLogger))
	dispatcher := NewDispatcher(ctx, med, r.keymap, mirror, sessionLogger)
	dispatcher.Register(conn)

	r.persistTransition(sess, session.JournalEventSessionOpen, fmt.Sprintf("game %q on map %q, team %d", hello.Game, hello.Map, hello.Team))

	sessionLogger.Info("session opened",
		"game", hello.Game,
		"map", hello.Map,
		"team", hello.Team,
		"unit_types", catalog.Len(),
	)

	return &activeSession{sess: sess, tracker: tr, mediator: med, conn: conn}, nil
}

// buildMediator registers every per-session command and query handler.
func (r *SessionRunner) buildMediator(sess *session.Session, tr *tracker.Tracker) (common.Mediator, error) {
	med := common.NewMediator()
	med.RegisterMiddleware(metrics.PrometheusMiddleware(r.cmdMetrics))

	if err := common.RegisterHandler[*lifecycle.UnitDestroyedCommand](med, lifecycle.NewUnitDestroyedHandler(tr, r.journalRepo, sess)); err != nil {
		return nil, fmt.Errorf("failed to register UnitDestroyed handler: %w", err)
	}
	if err := common.RegisterHandler[*lifecycle.UnitBuiltCommand](med, lifecycle.NewUnitBuiltHandler(tr, r.journalRepo, sess)); err != nil {
		return nil, fmt.Errorf("failed to register UnitBuilt handler: %w", err)
	}
	if err := common.RegisterHandler[*lifecycle.UnitLoadedCommand](med, lifecycle.NewUnitLoadedHandler(tr, r.journalRepo, sess)); err != nil {
		return nil, fmt.Errorf("failed to register UnitLoaded handler: %w", err)
	}
	if err := common.RegisterHandler[*lifecycle.UnitUnloadedCommand](med, lifecycle.NewUnitUnloadedHandler(tr, r.journalRepo, sess)); err != nil {
		return nil, fmt.Errorf("failed to register UnitUnloaded handler: %w", err)
	}
	if err := common.RegisterHandler[*lifecycle.ReconcileCommand](med, lifecycle.NewReconcileHandler(tr, r.journalRepo, sess)); err != nil {
		return nil, fmt.Errorf("failed to register Reconcile handler: %w", err)
	}

	if err := common.RegisterHandler[*tracking.TagUnitsCommand](med, tracking.NewTagUnitsHandler(tr, r.journalRepo, sess.ID())); err != nil {
		return nil, fmt.Errorf("failed to register TagUnits handler: %w", err)
	}
	if err := common.RegisterHandler[*tracking.UntagUnitsCommand](med, tracking.NewUntagUnitsHandler(tr, r.journalRepo, sess.ID())); err != nil {
		return nil, fmt.Errorf("failed to register UntagUnits handler: %w", err)
	}
	if err := common.RegisterHandler[*tracking.ListWatchesQuery](med, tracking.NewListWatchesHandler(tr)); err != nil {
		return nil, fmt.Errorf("failed to register ListWatches handler: %w", err)
	}
	if err := common.RegisterHandler[*tracking.ListPendingBuildsQuery](med, tracking.NewListPendingBuildsHandler(tr)); err != nil {
		return nil, fmt.Errorf("failed to register ListPendingBuilds handler: %w", err)
	}

	if err := common.RegisterHandler[*sessions.GetStatusQuery](med, sessions.NewGetStatusHandler(sess, tr)); err != nil {
		return nil, fmt.Errorf("failed to register GetStatus handler: %w", err)
	}
	if err := common.RegisterHandler[*sessions.StopSessionCommand](med, sessions.NewStopSessionHandler(sess, r)); err != nil {
		return nil, fmt.Errorf("failed to register StopSession handler: %w", err)
	}

	return med, nil
}

// finishSession closes out whatever session the connection carried.
func (r *SessionRunner) finishSession(conn *Connection) {
	r.mu.Lock()
	if r.active == nil || r.active.conn != conn {
		// Handshake never completed on this connection.
		r.mu.Unlock()
		return
	}
	active := r.active
	r.active = nil
	r.mu.Unlock()
	metrics.RecordBridgeState(false)

	sess := active.sess
	var err error
	if active.stopRequested {
		err = sess.Stop()
	} else {
		err = sess.Complete()
	}
	if err != nil {
		r.logger.Warn("session state transition failed", "session_id", sess.ID(), "error", err)
	}

	stats := active.tracker.Stats()
	r.persistTransition(sess, session.JournalEventSessionEnd,
		fmt.Sprintf("%d watches, %d pending builds, %d in transit at close", stats.Watches, stats.PendingBuilds, stats.InTransit))

	r.logger.Info("session ended",
		"session_id", sess.ID(),
		"status", sess.Status(),
		"runtime", sess.RuntimeDuration(),
	)
}

// persistTransition saves the session row and journals the transition.
// Persistence is best-effort: a down database must never stall the game.
func (r *SessionRunner) persistTransition(sess *session.Session, event, detail string) {
	ctx := context.Background()

	if r.sessionRepo != nil {
		if err := r.sessionRepo.Save(ctx, sess); err != nil {
			r.logger.Warn("failed to save session", "session_id", sess.ID(), "error", err)
		}
	}
	if r.journalRepo != nil {
		entry := session.JournalEntry{SessionID: sess.ID(), Event: event, Detail: detail}
		if err := r.journalRepo.Append(ctx, entry); err != nil {
			r.logger.Warn("failed to journal session transition", "session_id", sess.ID(), "event", event, "error", err)
		}
	}
}
