// Package server runs the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// ServerConfig holds the listener settings.
type ServerConfig struct {
	ListenAddr string
	Handler    http.Handler

	// TLSConfig enables HTTPS when non-nil.
	TLSConfig *tls.Config
}

// Server serves HTTP until its context is cancelled.
type Server struct {
	cfg ServerConfig

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// New creates a new Server.
func New(cfg ServerConfig) *Server {
	return &Server{
		cfg:   cfg,
		ready: make(chan struct{}),
	}
}

// ListenAndServe binds the listen address and serves requests. It blocks
// until ctx is cancelled, then drains in-flight requests for up to
// shutdownTimeout before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		close(s.ready)
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	if s.cfg.TLSConfig != nil {
		ln = tls.NewListener(ln, s.cfg.TLSConfig)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	srv := &http.Server{
		Handler:           s.cfg.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	slog.Info("http server listening", "addr", ln.Addr().String(), "tls", s.cfg.TLSConfig != nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down http server")

	// ctx is already done, so the drain deadline hangs off a fresh context.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown timeout reached, closing remaining connections", "error", err)
		_ = srv.Close()
	}

	<-errCh
	slog.Info("http server stopped")
	return nil
}

// Addr returns the bound listener address, or an empty string if binding
// failed. It blocks until ListenAndServe has tried to bind.
func (s *Server) Addr() string {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
