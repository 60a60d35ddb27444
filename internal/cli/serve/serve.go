// Package serve implements the 'pprofd serve' command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coral-mesh/pprofd/internal/cli/helpers"
	"github.com/coral-mesh/pprofd/internal/config"
	"github.com/coral-mesh/pprofd/internal/sampling"
	"github.com/coral-mesh/pprofd/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pprof endpoints for this process",
		Long: `Start an HTTP server exposing pprof-compatible profiles of the pprofd process.

Endpoints (under /debug/pprof):
  heap        Sampled heap allocations (?gc=1 to collect first)
  goroutine   Goroutine stacks (?debug=1 for a text dump); also /thread
  wall        Wall-clock profile (?seconds=N)
  profile     CPU profile (?seconds=N)
  cmdline     Process command line

Configuration is read from defaults, then the YAML file given by --config or
$PPROFD_CONFIG, then PPROFD_* environment variables, then flags.

Examples:
  # Serve on the default address
  pprofd serve

  # Listen on all interfaces with finer heap sampling
  pprofd serve --addr 0.0.0.0:6060 --heap-sample-rate 4096

  # Fetch a heap profile with the Go tooling
  go tool pprof http://localhost:8080/debug/pprof/heap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := helpers.LoadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags = config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	logger := helpers.NewLogger(cfg, "pprofd")

	sampling.ConfigureHeap(cfg.Profiling.HeapEnabled, cfg.Profiling.HeapSampleRate)
	srv := server.New(server.ConfigFrom(cfg), logger)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("pprofd stopped")
	return nil
}
