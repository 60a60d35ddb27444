// Package constants defines shared configuration constants.
package constants

import "time"

var (
	// DefaultAddr matches the address the pprof server historically bound to.
	DefaultAddr = "localhost:8080"

	// ConfigEnvVar names a YAML config file when --config is not given.
	ConfigEnvVar = "PPROFD_CONFIG"

	DefaultReadHeaderTimeout = 10 * time.Second

	DefaultShutdownTimeout = 10 * time.Second

	// DefaultWallInterval is the goroutine sampling interval for wall profiles (100Hz).
	DefaultWallInterval = 10 * time.Millisecond

	DefaultWallDuration = 30 * time.Second

	DefaultCPUDuration = 30 * time.Second

	// MaxProfileDuration caps ?seconds= on sampling endpoints.
	MaxProfileDuration = 5 * time.Minute
)

// Debug endpoint paths.
const (
	PathIndex     = "/debug/pprof"
	PathHeap      = "/debug/pprof/heap"
	PathThread    = "/debug/pprof/thread"
	PathGoroutine = "/debug/pprof/goroutine"
	PathWall      = "/debug/pprof/wall"
	PathProfile   = "/debug/pprof/profile"
	PathCmdline   = "/debug/pprof/cmdline"
)
