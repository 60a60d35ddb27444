package serve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/pprofd/internal/config"
)

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Logging.Level = "error"
	cfg.Logging.Pretty = false

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestRun_ListenFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "256.0.0.1:1"
	cfg.Logging.Level = "error"

	err := run(context.Background(), cfg)
	assert.ErrorContains(t, err, "failed to listen")
}

func TestNewServeCmd_RejectsArgs(t *testing.T) {
	cmd := NewServeCmd()
	cmd.SetArgs([]string{"extra"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}
