// Package server exposes pprof-compatible debug endpoints over HTTP.
//
// The route table mirrors net/http/pprof's layout under /debug/pprof, so
// `go tool pprof http://host/debug/pprof/heap` works against it. Responses
// are gzip'd profile.proto documents produced by pkg/profile.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/coral-mesh/pprofd/internal/config"
	"github.com/coral-mesh/pprofd/internal/constants"
	"github.com/coral-mesh/pprofd/internal/sampling"
)

// Config holds the server settings.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	WallInterval        time.Duration
	WallDefaultDuration time.Duration
	CPUDefaultDuration  time.Duration
	// MaxDuration caps ?seconds= on the wall and CPU endpoints.
	MaxDuration time.Duration
}

// ConfigFrom extracts the server settings from a loaded configuration.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Addr:                c.Server.Addr,
		ReadHeaderTimeout:   c.Server.ReadHeaderTimeout,
		ShutdownTimeout:     c.Server.ShutdownTimeout,
		WallInterval:        c.Profiling.WallInterval,
		WallDefaultDuration: c.Profiling.WallDefaultDuration,
		CPUDefaultDuration:  c.Profiling.CPUDefaultDuration,
		MaxDuration:         c.Profiling.MaxDuration,
	}
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = constants.DefaultAddr
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = constants.DefaultShutdownTimeout
	}
	if c.WallInterval <= 0 {
		c.WallInterval = constants.DefaultWallInterval
	}
	if c.WallDefaultDuration <= 0 {
		c.WallDefaultDuration = constants.DefaultWallDuration
	}
	if c.CPUDefaultDuration <= 0 {
		c.CPUDefaultDuration = constants.DefaultCPUDuration
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = constants.MaxProfileDuration
	}
	return c
}

// Server serves the debug endpoints. It implements http.Handler, so it can
// also be mounted on an existing mux.
type Server struct {
	cfg    Config
	logger zerolog.Logger

	heap       *sampling.HeapSource
	goroutines *sampling.GoroutineSource
	wall       *sampling.WallSampler

	routes map[string]http.HandlerFunc

	// cpu serializes CPU profiles; the runtime allows only one at a time.
	cpu sync.Mutex

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	addr       string
	done       chan error
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// New creates a server. It does not listen until Start is called.
func New(cfg Config, logger zerolog.Logger) *Server {
	cfg = cfg.withDefaults()
	logger = logger.With().Str("component", "server").Logger()

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		heap:       sampling.NewHeapSource(logger),
		goroutines: sampling.NewGoroutineSource(logger),
		wall:       sampling.NewWallSampler(cfg.WallInterval, logger),
	}
	s.routes = map[string]http.HandlerFunc{
		constants.PathIndex:     s.handleIndex,
		constants.PathHeap:      s.handleHeap,
		constants.PathThread:    s.handleGoroutine,
		constants.PathGoroutine: s.handleGoroutine,
		constants.PathWall:      s.handleWall,
		constants.PathProfile:   s.handleCPU,
		constants.PathCmdline:   s.handleCmdline,
	}
	return s
}

// ServeHTTP routes a request to its endpoint.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.New().String()
	route := strings.TrimRight(r.URL.Path, "/")

	logger := s.logger.With().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", route).
		Logger()

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	rec.Header().Set("X-Request-Id", requestID)

	handler, ok := s.routes[route]
	switch {
	case !ok:
		http.NotFound(rec, r)
	case r.Method != http.MethodGet && r.Method != http.MethodHead:
		rec.Header().Set("Allow", "GET, HEAD")
		http.Error(rec, "method not allowed", http.StatusMethodNotAllowed)
	default:
		handler(rec, r.WithContext(logger.WithContext(r.Context())))
	}

	logger.Debug().
		Int("status", rec.status).
		Int("bytes", rec.bytes).
		Dur("duration", time.Since(start)).
		Msg("Handled request")
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return fmt.Errorf("server already started on %s", s.addr)
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}

	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())
	s.listener = listener
	s.addr = listener.Addr().String()
	s.done = make(chan error, 1)
	s.httpServer = &http.Server{
		Handler:           h2c.NewHandler(s, &http2.Server{}),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}

	srv, done := s.httpServer, s.done
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("pprof server started")
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		} else if err != nil {
			s.logger.Error().Err(err).Msg("pprof server error")
		}
		done <- err
		close(done)
	}()

	return nil
}

// Run starts the server and blocks until ctx is done or serving fails, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections, ends in-flight sampling early and
// waits for responses to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, cancelBase := s.httpServer, s.cancelBase
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logger.Info().Msg("Stopping pprof server")
	cancelBase()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Stop closes the server immediately.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv, cancelBase := s.httpServer, s.cancelBase
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logger.Info().Msg("Closing pprof server")
	cancelBase()
	return srv.Close()
}

// Addr returns the listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
