package config

import "github.com/coral-mesh/pprofd/internal/constants"

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              constants.DefaultAddr,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			ShutdownTimeout:   constants.DefaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
		Profiling: ProfilingConfig{
			HeapEnabled:         true,
			WallInterval:        constants.DefaultWallInterval,
			WallDefaultDuration: constants.DefaultWallDuration,
			CPUDefaultDuration:  constants.DefaultCPUDuration,
			MaxDuration:         constants.MaxProfileDuration,
		},
	}
}
