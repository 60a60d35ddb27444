package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// LogEnvVar turns on test log output when set to a zerolog level name.
const LogEnvVar = "PPROFD_TEST_LOG"

// NewTestLogger returns a logger for tests. Output is discarded unless
// PPROFD_TEST_LOG names a level, in which case lines go to t.Log.
func NewTestLogger(t testing.TB) zerolog.Logger {
	t.Helper()

	name := os.Getenv(LogEnvVar)
	if name == "" {
		return zerolog.New(io.Discard)
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		t.Fatalf("invalid %s=%q: %v", LogEnvVar, name, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: testWriter{t}, NoColor: true}).
		Level(level).
		With().Timestamp().Str("test", t.Name()).
		Logger()
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
