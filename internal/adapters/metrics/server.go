package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the Prometheus registry over HTTP for scraping.
type Server struct {
	addr   string
	path   string
	logger *slog.Logger

	httpServer *http.Server
}

// NewServer creates a metrics HTTP server bound to host:port. The registry
// must be initialized via InitRegistry before Start.
func NewServer(host string, port int, path string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = "/metrics"
	}
	return &Server{
		addr:   net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		path:   path,
		logger: logger,
	}
}

// Start begins serving the metrics endpoint. It returns once the listener is
// bound; serving continues in the background until Stop.
func (s *Server) Start() error {
	if Registry == nil {
		return fmt.Errorf("metrics registry not initialized")
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("metrics server listening", "addr", s.addr, "path", s.path)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", "error", err)
		}
	}()

	return nil
}

// Stop shuts the metrics server down, waiting for in-flight scrapes.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
