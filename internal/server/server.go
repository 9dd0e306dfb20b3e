package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server wraps http.Server with graceful shutdown.
type Server struct {
	httpServer      *http.Server
	logger          *slog.Logger
	onShutdown      []func()
	shutdownTimeout time.Duration
}

// New создает HTTP сервер. onShutdown вызываются после остановки сервера.
func New(addr string, handler http.Handler, logger *slog.Logger, shutdownTimeout time.Duration, onShutdown ...func()) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		onShutdown:      onShutdown,
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down gracefully...")
	case err, ok := <-errChan:
		s.cleanup()
		if ok {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// дожидаемся выхода горутины Serve
	if serveErr, ok := <-errChan; ok {
		return serveErr
	}
	return nil
}

func (s *Server) cleanup() {
	for _, fn := range s.onShutdown {
		fn()
	}
}
