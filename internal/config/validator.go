package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []ValidationError
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if c.Server.Addr == "" {
		add("server.addr", "listen address is required")
	} else if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		add("server.addr", fmt.Sprintf("invalid listen address: %v", err))
	}
	if c.Server.ReadHeaderTimeout < 0 {
		add("server.read_header_timeout", "read header timeout must not be negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		add("server.shutdown_timeout", "shutdown timeout must be positive")
	}

	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
			add("logging.level", fmt.Sprintf("unknown log level %q", c.Logging.Level))
		}
	}

	p := c.Profiling
	if p.HeapSampleRate < 0 {
		add("profiling.heap_sample_rate", "heap sample rate must not be negative")
	}
	if p.WallInterval <= 0 {
		add("profiling.wall_interval", "wall interval must be positive")
	}
	if p.MaxDuration <= 0 {
		add("profiling.max_duration", "max duration must be positive")
	}
	if p.WallDefaultDuration <= 0 {
		add("profiling.wall_default_duration", "wall default duration must be positive")
	} else if p.MaxDuration > 0 && p.WallDefaultDuration > p.MaxDuration {
		add("profiling.wall_default_duration", "wall default duration exceeds max duration")
	}
	if p.CPUDefaultDuration <= 0 {
		add("profiling.cpu_default_duration", "cpu default duration must be positive")
	} else if p.MaxDuration > 0 && p.CPUDefaultDuration > p.MaxDuration {
		add("profiling.cpu_default_duration", "cpu default duration exceeds max duration")
	}
	if p.WallInterval > 0 && p.WallDefaultDuration > 0 && p.WallInterval > p.WallDefaultDuration {
		add("profiling.wall_interval", "wall interval exceeds wall default duration")
	}

	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}
