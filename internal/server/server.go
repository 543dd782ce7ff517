package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ricesearch/rbo/internal/batch"
	"github.com/ricesearch/rbo/internal/cache"
	"github.com/ricesearch/rbo/internal/pkg/logger"
	"github.com/ricesearch/rbo/internal/pkg/middleware"
)

// Config configures the server.
type Config struct {
	// Addr is the host:port to listen on. Port 0 picks a free port.
	Addr string

	// Version is reported by /healthz.
	Version string

	// RateLimit is the per-client request rate; zero disables limiting.
	RateLimit int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            "0.0.0.0:8080",
		Version:         "dev",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server serves the RBO API.
type Server struct {
	cfg     Config
	log     *logger.Logger
	handler http.Handler
	limiter *middleware.RateLimiter

	mu      sync.RWMutex
	started bool
	addr    net.Addr
}

// New creates a server. defaults supplies p and mode for requests that omit
// them; c may be nil.
func New(cfg Config, defaults batch.Config, c cache.Cache, log *logger.Logger) *Server {
	def := DefaultConfig()
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if log == nil {
		log = logger.Discard()
	}

	s := &Server{
		cfg: cfg,
		log: log.WithComponent("server"),
	}

	mux := http.NewServeMux()
	NewHandler(defaults, c, log, cfg.Version).RegisterRoutes(mux)

	mw := []func(http.Handler) http.Handler{
		middleware.Recovery(s.log),
		middleware.RequestID,
		middleware.Logging(s.log),
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit))
		mw = append(mw, s.limiter.Middleware)
	}
	s.handler = middleware.Chain(mux, mw...)

	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	defer func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
	}()

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", "addr", ln.Addr().String())
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("HTTP shutdown error", "error", err)
		return err
	}

	s.log.Info("Server stopped")
	return nil
}

// Addr returns the bound address once Run is listening, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Health reports whether the server is running.
func (s *Server) Health() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
