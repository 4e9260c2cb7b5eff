package daemonctl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/application/sessions"
	"github.com/rtsops/reinforce/internal/application/tracking"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/pkg/wire"
)

// MediatorSource exposes the mediator of the currently running game session.
// The engine bridge runner implements it; ok is false between sessions.
type MediatorSource interface {
	CurrentMediator() (common.Mediator, bool)
}

// Server answers CLI requests on the control socket. Session-scoped
// operations route through the active session's mediator, history queries
// through the daemon mediator, which is always available.
type Server struct {
	socketPath     string
	daemonMediator common.Mediator
	sessions       MediatorSource
	version        string
	logger         *slog.Logger

	listener net.Listener
	wg       sync.WaitGroup
}

func NewServer(socketPath string, daemonMediator common.Mediator, sessions MediatorSource, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath:     socketPath,
		daemonMediator: daemonMediator,
		sessions:       sessions,
		version:        version,
		logger:         logger,
	}
}

// Start binds the control socket and begins serving requests. The socket is
// restricted to the owning user; the CLI runs as the same user as the daemon.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to clean up socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", s.socketPath, err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("control socket listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	return nil
}

// Stop closes the listener and waits for in-flight requests to finish.
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.logger.Info("control accept loop ended", "error", err)
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// handleConn serves one CLI invocation. The client may pipeline several
// requests on one connection; the loop ends when the client hangs up.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	for {
		env, err := wire.ReadEnvelope(conn)
		if err != nil {
			return
		}

		reply := s.dispatch(ctx, env)
		if err := wire.WriteEnvelope(conn, reply); err != nil {
			s.logger.Warn("failed to write control reply", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, env wire.Envelope) wire.Envelope {
	ctx = common.WithLogger(ctx, common.NewSlogSessionLogger(s.logger))

	switch env.Type {
	case OpHealth:
		_, active := s.sessions.CurrentMediator()
		return okReply(HealthReply{Status: "ok", Version: s.version, SessionActive: active})
	case OpStatus:
		return s.sessionRequest(ctx, &sessions.GetStatusQuery{}, func(resp common.Response) (any, error) {
			status, ok := resp.(*sessions.GetStatusResponse)
			if !ok {
				return nil, fmt.Errorf("unexpected response type %T", resp)
			}
			return statusReply(status.Status), nil
		})
	case OpWatches:
		return s.sessionRequest(ctx, &tracking.ListWatchesQuery{}, func(resp common.Response) (any, error) {
			watches, ok := resp.(*tracking.ListWatchesResponse)
			if !ok {
				return nil, fmt.Errorf("unexpected response type %T", resp)
			}
			return watchesReply(watches.Watches), nil
		})
	case OpPendingBuilds:
		return s.sessionRequest(ctx, &tracking.ListPendingBuildsQuery{}, func(resp common.Response) (any, error) {
			builds, ok := resp.(*tracking.ListPendingBuildsResponse)
			if !ok {
				return nil, fmt.Errorf("unexpected response type %T", resp)
			}
			return buildsReply(builds.Builds), nil
		})
	case OpTagUnits:
		var req TagUnitsRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return errorReply(fmt.Sprintf("invalid tag request: %v", err))
		}
		return s.sessionRequest(ctx, &tracking.TagUnitsCommand{UnitIDs: req.UnitIDs}, func(resp common.Response) (any, error) {
			tagged, ok := resp.(*tracking.TagUnitsResponse)
			if !ok {
				return nil, fmt.Errorf("unexpected response type %T", resp)
			}
			return TagUnitsReply{Tagged: tagged.Tagged}, nil
		})
	case OpUntagUnits:
		var req UntagUnitsRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return errorReply(fmt.Sprintf("invalid untag request: %v", err))
		}
		return s.sessionRequest(ctx, &tracking.UntagUnitsCommand{UnitIDs: req.UnitIDs}, func(resp common.Response) (any, error) {
			removed, ok := resp.(*tracking.UntagUnitsResponse)
			if !ok {
				return nil, fmt.Errorf("unexpected response type %T", resp)
			}
			return UntagUnitsReply{Removed: removed.Removed}, nil
		})
	case OpStopSession:
		return s.sessionRequest(ctx, &sessions.StopSessionCommand{}, func(resp common.Response) (any, error) {
			stopped, ok := resp.(*sessions.StopSessionResponse)
			if !ok {
				return nil, fmt.Errorf("unexpected response type %T", resp)
			}
			return StopSessionReply{SessionID: stopped.SessionID}, nil
		})
	case OpSessions:
		var req SessionsRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return errorReply(fmt.Sprintf("invalid sessions request: %v", err))
		}
		resp, err := s.daemonMediator.Send(ctx, &sessions.ListSessionsQuery{Limit: req.Limit})
		if err != nil {
			return errorReply(err.Error())
		}
		list, ok := resp.(*sessions.ListSessionsResponse)
		if !ok {
			return errorReply(fmt.Sprintf("unexpected response type %T", resp))
		}
		return okReply(sessionsReply(list.Sessions))
	case OpJournal:
		var req JournalRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return errorReply(fmt.Sprintf("invalid journal request: %v", err))
		}
		resp, err := s.daemonMediator.Send(ctx, &sessions.ListJournalQuery{SessionID: req.SessionID, Limit: req.Limit})
		if err != nil {
			return errorReply(err.Error())
		}
		entries, ok := resp.(*sessions.ListJournalResponse)
		if !ok {
			return errorReply(fmt.Sprintf("unexpected response type %T", resp))
		}
		return okReply(journalReply(req.SessionID, entries.Entries))
	default:
		return errorReply(fmt.Sprintf("unknown operation: %s", env.Type))
	}
}

// sessionRequest routes a request to the active session's mediator and
// converts the response for the wire.
func (s *Server) sessionRequest(ctx context.Context, req common.Request, convert func(common.Response) (any, error)) wire.Envelope {
	med, ok := s.sessions.CurrentMediator()
	if !ok {
		return errorReply("no active session")
	}

	resp, err := med.Send(ctx, req)
	if err != nil {
		return errorReply(err.Error())
	}

	data, err := convert(resp)
	if err != nil {
		return errorReply(err.Error())
	}

	return okReply(data)
}

func okReply(data any) wire.Envelope {
	env, err := wire.NewEnvelope(ReplyOK, data)
	if err != nil {
		return errorReply(fmt.Sprintf("failed to encode reply: %v", err))
	}
	return env
}

func errorReply(msg string) wire.Envelope {
	env, err := wire.NewEnvelope(ReplyError, ErrorReply{Error: msg})
	if err != nil {
		// ErrorReply always marshals; this branch keeps the signature total.
		return wire.Envelope{Type: ReplyError}
	}
	return env
}

func statusReply(dto sessions.StatusDTO) StatusReply {
	return StatusReply{
		SessionID:     dto.SessionID,
		GameID:        dto.GameID,
		MapName:       dto.MapName,
		Team:          dto.Team,
		Status:        dto.Status,
		UptimeSeconds: dto.Uptime.Seconds(),
		Watches:       dto.Watches,
		PendingBuilds: dto.PendingBuilds,
		InTransit:     dto.InTransit,
	}
}

func watchesReply(watches []tracking.WatchDTO) WatchesReply {
	reply := WatchesReply{Watches: make([]WatchInfo, 0, len(watches))}
	for _, w := range watches {
		reply.Watches = append(reply.Watches, WatchInfo{
			UnitID:        w.UnitID,
			UnitType:      w.UnitType,
			Orders:        w.Orders,
			FactoryOrders: w.FactoryOrders,
			CreatedAt:     w.CreatedAt,
		})
	}
	return reply
}

func buildsReply(builds []tracking.PendingBuildDTO) PendingBuildsReply {
	reply := PendingBuildsReply{Builds: make([]PendingBuildInfo, 0, len(builds))}
	for _, b := range builds {
		reply.Builds = append(reply.Builds, PendingBuildInfo{
			UnitType:  b.UnitType,
			FactoryID: b.FactoryID,
			Orders:    b.Orders,
			QueuedAt:  b.QueuedAt,
		})
	}
	return reply
}

func sessionsReply(records []session.Record) SessionsReply {
	reply := SessionsReply{Sessions: make([]SessionInfo, 0, len(records))}
	for _, r := range records {
		reply.Sessions = append(reply.Sessions, SessionInfo{
			SessionID: r.ID,
			GameID:    r.GameID,
			MapName:   r.MapName,
			Team:      r.Team,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			StartedAt: r.StartedAt,
			StoppedAt: r.StoppedAt,
			LastError: r.LastError,
		})
	}
	return reply
}

func journalReply(sessionID string, entries []session.JournalEntry) JournalReply {
	reply := JournalReply{SessionID: sessionID, Entries: make([]JournalEntryInfo, 0, len(entries))}
	for _, e := range entries {
		reply.Entries = append(reply.Entries, JournalEntryInfo{
			Event:     e.Event,
			UnitID:    e.UnitID,
			UnitType:  e.UnitType,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		})
	}
	return reply
}
