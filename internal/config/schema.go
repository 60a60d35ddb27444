// Package config provides configuration loading and management.
package config

import "time"

// Config is the pprofd configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Profiling ProfilingConfig `yaml:"profiling"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string        `yaml:"addr" env:"PPROFD_ADDR"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"PPROFD_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"PPROFD_SHUTDOWN_TIMEOUT"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"PPROFD_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"PPROFD_LOG_PRETTY"`
}

// ProfilingConfig configures the sampling sources behind the endpoints.
type ProfilingConfig struct {
	// HeapEnabled turns heap allocation sampling on. When false the heap
	// endpoint answers 412.
	HeapEnabled bool `yaml:"heap_enabled" env:"PPROFD_HEAP_ENABLED"`
	// HeapSampleRate is the average bytes allocated per heap sample
	// (runtime.MemProfileRate). Zero keeps the runtime default.
	HeapSampleRate int `yaml:"heap_sample_rate" env:"PPROFD_HEAP_SAMPLE_RATE"`

	WallInterval        time.Duration `yaml:"wall_interval" env:"PPROFD_WALL_INTERVAL"`
	WallDefaultDuration time.Duration `yaml:"wall_default_duration" env:"PPROFD_WALL_DEFAULT_DURATION"`
	CPUDefaultDuration  time.Duration `yaml:"cpu_default_duration" env:"PPROFD_CPU_DEFAULT_DURATION"`
	// MaxDuration caps the ?seconds= parameter of sampling endpoints.
	MaxDuration time.Duration `yaml:"max_duration" env:"PPROFD_MAX_DURATION"`
}
