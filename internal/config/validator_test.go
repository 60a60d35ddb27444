package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
			errMsg:  "listen address is required",
		},
		{
			name:    "addr without port",
			mutate:  func(c *Config) { c.Server.Addr = "localhost" },
			wantErr: true,
			errMsg:  "invalid listen address",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: true,
			errMsg:  "unknown log level",
		},
		{
			name:    "negative heap sample rate",
			mutate:  func(c *Config) { c.Profiling.HeapSampleRate = -1 },
			wantErr: true,
			errMsg:  "heap sample rate must not be negative",
		},
		{
			name:    "zero wall interval",
			mutate:  func(c *Config) { c.Profiling.WallInterval = 0 },
			wantErr: true,
			errMsg:  "wall interval must be positive",
		},
		{
			name: "wall default beyond max",
			mutate: func(c *Config) {
				c.Profiling.MaxDuration = time.Second
				c.Profiling.CPUDefaultDuration = time.Second
			},
			wantErr: true,
			errMsg:  "wall default duration exceeds max duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Server.ShutdownTimeout = 0

	err := cfg.Validate()
	var multi *MultiValidationError
	if !errors.As(err, &multi) {
		t.Fatalf("Validate() error = %T, want *MultiValidationError", err)
	}
	if len(multi.Errors) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(multi.Errors), multi)
	}
	if !strings.Contains(err.Error(), "validation failed with 2 errors") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
