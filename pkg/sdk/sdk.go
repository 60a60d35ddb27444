package sdk

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/pprofd/internal/constants"
	"github.com/coral-mesh/pprofd/internal/sampling"
	"github.com/coral-mesh/pprofd/internal/server"
)

// SDK is a running pprof server embedded in an application.
type SDK struct {
	logger zerolog.Logger
	server *server.Server
}

// Config contains SDK configuration options.
type Config struct {
	// Addr is the listen address (default localhost:8080). Use
	// "127.0.0.1:0" to pick a free port and read it back with Addr.
	Addr string

	// Logger is the logger instance (optional, defaults to zerolog.Nop()).
	Logger zerolog.Logger

	// HeapSampleRate sets runtime.MemProfileRate when positive.
	HeapSampleRate int

	// DisableHeap turns heap sampling off; the heap endpoint then answers 412.
	DisableHeap bool

	// WallInterval is the wall-clock sampling interval (default 10ms).
	WallInterval time.Duration
}

func (c Config) serverConfig() server.Config {
	addr := c.Addr
	if addr == "" {
		addr = constants.DefaultAddr
	}
	return server.Config{
		Addr:         addr,
		WallInterval: c.WallInterval,
	}
}

func (c Config) logger() zerolog.Logger {
	logger := c.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}
	return logger.With().Str("component", "pprofd-sdk").Logger()
}

// Start configures heap sampling and starts the pprof server in the
// background.
func Start(cfg Config) (*SDK, error) {
	logger := cfg.logger()

	sampling.ConfigureHeap(!cfg.DisableHeap, cfg.HeapSampleRate)

	srv := server.New(cfg.serverConfig(), logger)
	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("failed to start pprof server: %w", err)
	}

	logger.Info().
		Str("addr", srv.Addr()).
		Bool("heap_enabled", !cfg.DisableHeap).
		Msg("pprofd SDK started")

	return &SDK{logger: logger, server: srv}, nil
}

// Handler returns the pprof endpoints as an http.Handler for mounting on an
// existing server. Nothing is started.
func Handler(cfg Config) http.Handler {
	sampling.ConfigureHeap(!cfg.DisableHeap, cfg.HeapSampleRate)
	return server.New(cfg.serverConfig(), cfg.logger())
}

// Addr returns the address the server is listening on.
func (s *SDK) Addr() string {
	return s.server.Addr()
}

// Close stops the server, giving in-flight requests a short grace period.
func (s *SDK) Close() error {
	s.logger.Info().Msg("Shutting down pprofd SDK")

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Graceful shutdown failed, closing")
		return s.server.Stop()
	}
	return nil
}
