package enginebridge

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
)

// Server owns the unix socket the game mod connects to. Each accepted
// connection is handed to the session runner; the runner itself decides
// whether a session slot is free.
type Server struct {
	socketPath string
	runner     *SessionRunner
	logger     *slog.Logger

	listener net.Listener
	wg       sync.WaitGroup
}

func NewServer(socketPath string, runner *SessionRunner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		runner:     runner,
		logger:     logger,
	}
}

// Start binds the socket and begins accepting mod connections. It returns
// once the accept loop is running; Stop shuts it down.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we
	// can rebind.
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to clean up socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", s.socketPath, err)
	}
	s.listener = listener

	s.logger.Info("engine bridge listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	return nil
}

// Stop closes the listener and waits for connection handlers to finish.
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	if _, ok := s.runner.CurrentMediator(); ok {
		if err := s.runner.StopSession(context.Background()); err != nil {
			s.logger.Warn("failed to stop active session", "error", err)
		}
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
			// A closed listener also lands here on Stop.
			s.logger.Info("engine bridge accept loop ended", "error", err)
			return
		}

		s.logger.Info("engine connection accepted")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runner.HandleConn(conn)
		}()
	}
}
