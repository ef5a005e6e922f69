// Package runserver exposes a running Manager's metrics.Collector over an
// HTTP + WebSocket status API, entirely outside the replication core. It
// mirrors the teacher's internal/server + internal/daemon split, trimmed to
// the status-only surface this domain needs: no job control, no cluster
// management, no embedded frontend.
package runserver

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jfoltran/envclone/internal/metrics"
)

// Server is the HTTP+WebSocket status server.
type Server struct {
	collector *metrics.Collector
	logger    zerolog.Logger
	hub       *hub
	srv       *http.Server
}

// New creates a new Server over collector.
func New(collector *metrics.Collector, logger zerolog.Logger) *Server {
	return &Server{
		collector: collector,
		logger:    logger.With().Str("component", "runserver").Logger(),
		hub:       newHub(collector, logger),
	}
}

// Start begins serving on the given port. It blocks until ctx is cancelled
// or the listener fails.
func (s *Server) Start(ctx context.Context, port int) error {
	h := &handlers{collector: s.collector}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", h.status)
	mux.HandleFunc("GET /api/v1/entities", h.entities)
	mux.HandleFunc("GET /api/v1/logs", h.logs)
	mux.HandleFunc("/api/v1/ws", s.hub.handleWS)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	go s.hub.start(ctx)

	s.logger.Info().Int("port", port).Msg("starting status server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.srv.Close()
	case err := <-errCh:
		return err
	}
}

// StartBackground starts the server in a goroutine.
func (s *Server) StartBackground(ctx context.Context, port int) {
	go func() {
		if err := s.Start(ctx, port); err != nil {
			s.logger.Err(err).Msg("status server error")
		}
	}()
}
