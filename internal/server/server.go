package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"tender-notifier/internal/common/logging"
)

// Server runs the admin HTTP API.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// New creates a server listening on the given port. The report endpoint
// streams whole workbooks, so the write timeout is generous.
func New(handler http.Handler, port string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background. Bind errors are
// returned directly; later serve errors arrive on the returned channel.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}
	s.ln = ln

	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	logging.Info("Admin HTTP server listening", logging.String("addr", ln.Addr().String()))
	return errc, nil
}

// Addr is the bound address, available after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
