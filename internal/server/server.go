// Package server exposes the courtsim HTTP API: scenario options, progress
// records, and published outputs. The play command runs against it when a
// server URL is configured; everything also works offline.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"courtsim/internal/options"
	"courtsim/internal/store"
)

// Server is the courtsim API server.
type Server struct {
	port    int
	store   *store.Store
	options options.Provider
	log     *zap.Logger
	limiter *rateLimiter

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	started  bool
}

// Config holds server configuration options.
type Config struct {
	Port    int
	Store   *store.Store
	Options options.Provider

	// RateLimit guards mutating endpoints. Zero values mean defaults.
	RateLimit RateLimitConfig

	Logger *zap.Logger
}

// NewServer creates a new Server instance.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	opts := cfg.Options
	if opts == nil {
		opts = options.Builtin()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		port:    cfg.Port,
		store:   cfg.Store,
		options: opts,
		log:     log,
		limiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Start starts the HTTP server. It blocks until the server is closed via
// Stop or fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := fmt.Sprintf(":%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	s.started = true
	s.mu.Unlock()

	s.log.Info("server listening", zap.String("addr", listener.Addr().String()))

	err = s.server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.started = false
	return nil
}

// ListenAddr returns the actual address the server is listening on. Useful
// when port 0 is used to get an available port. Returns empty string if not
// started.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/options", s.handleOptions)

	mux.HandleFunc("GET /api/progress", s.handleListProgress)
	mux.HandleFunc("POST /api/progress", s.withWriteLimit(s.handleCreateProgress))
	mux.HandleFunc("GET /api/progress/{id}", s.handleGetProgress)
	mux.HandleFunc("PUT /api/progress/{id}", s.withWriteLimit(s.handleUpdateProgress))
	mux.HandleFunc("DELETE /api/progress/{id}", s.withWriteLimit(s.handleDeleteProgress))

	mux.HandleFunc("GET /api/output", s.handleListOutput)
	mux.HandleFunc("POST /api/output", s.withWriteLimit(s.handleCreateOutput))
	mux.HandleFunc("GET /api/output/{id}", s.handleGetOutput)
	mux.HandleFunc("PUT /api/output/{id}", s.withWriteLimit(s.handleUpdateOutput))
	mux.HandleFunc("DELETE /api/output/{id}", s.withWriteLimit(s.handleDeleteOutput))
}

// withWriteLimit applies the per-IP rate limit to a mutating handler.
func (s *Server) withWriteLimit(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		res := s.limiter.check(ip)
		if !res.Allowed {
			s.log.Warn("request rate limited",
				zap.String("ip", ip),
				zap.Duration("retryAfter", res.RetryAfter))
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(res.RetryAfter.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		handler(w, r)
	}
}
