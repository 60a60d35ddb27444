package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		emitted []string
		dropped []string
	}{
		{level: "trace", emitted: []string{"trace msg", "debug msg", "info msg"}},
		{level: "debug", emitted: []string{"debug msg", "info msg"}, dropped: []string{"trace msg"}},
		{level: "info", emitted: []string{"info msg", "warn msg"}, dropped: []string{"debug msg"}},
		{level: "WARN", emitted: []string{"warn msg"}, dropped: []string{"info msg"}},
		{level: "error", emitted: []string{"error msg"}, dropped: []string{"warn msg"}},
		{level: "bogus", emitted: []string{"info msg"}, dropped: []string{"debug msg"}},
		{level: "", emitted: []string{"info msg"}, dropped: []string{"debug msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: tt.level, Output: &buf})

			logger.Trace().Msg("trace msg")
			logger.Debug().Msg("debug msg")
			logger.Info().Msg("info msg")
			logger.Warn().Msg("warn msg")
			logger.Error().Msg("error msg")

			out := buf.String()
			for _, msg := range tt.emitted {
				if !strings.Contains(out, msg) {
					t.Errorf("level %q: expected %q to be logged", tt.level, msg)
				}
			}
			for _, msg := range tt.dropped {
				if strings.Contains(out, msg) {
					t.Errorf("level %q: expected %q to be dropped", tt.level, msg)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"unknown": zerolog.InfoLevel,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithComponent(Config{Level: "info", Output: &buf}, "server")

	logger.Info().Msg("listening")

	out := buf.String()
	if !strings.Contains(out, `"component":"server"`) {
		t.Errorf("expected component field, got %q", out)
	}
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Pretty: true, Output: &buf})

	logger.Info().Msg("pretty message")

	if !strings.Contains(buf.String(), "pretty message") {
		t.Error("expected pretty output to contain the message")
	}
	if strings.HasPrefix(buf.String(), "{") {
		t.Error("pretty output should not be JSON")
	}
}

func TestNew_NilOutput(t *testing.T) {
	logger := New(Config{Level: "error"})
	logger.Error().Msg("goes to stderr")
}
