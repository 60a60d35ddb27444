package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags holds the command-line overrides for a Config. Only flags the user
// actually set are applied, so file and environment values survive.
type Flags struct {
	ConfigPath string

	addr           string
	logLevel       string
	logPretty      bool
	heapEnabled    bool
	heapSampleRate int
	maxDuration    time.Duration
}

// RegisterFlags registers the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	def := Default()

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Path to a YAML config file (default $PPROFD_CONFIG)")
	fs.StringVar(&f.addr, "addr", def.Server.Addr, "Listen address for the debug endpoints")
	fs.StringVar(&f.logLevel, "log-level", def.Logging.Level, "Log level (trace, debug, info, warn, error)")
	fs.BoolVar(&f.logPretty, "log-pretty", def.Logging.Pretty, "Human-readable console logs")
	fs.BoolVar(&f.heapEnabled, "heap", def.Profiling.HeapEnabled, "Enable heap allocation sampling")
	fs.IntVar(&f.heapSampleRate, "heap-sample-rate", def.Profiling.HeapSampleRate, "Average bytes allocated per heap sample (0 keeps the runtime default)")
	fs.DurationVar(&f.maxDuration, "max-duration", def.Profiling.MaxDuration, "Upper bound for ?seconds= on sampling endpoints")

	return f
}

// Apply copies every flag changed on fs into cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) {
	if fs.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if fs.Changed("log-pretty") {
		cfg.Logging.Pretty = f.logPretty
	}
	if fs.Changed("heap") {
		cfg.Profiling.HeapEnabled = f.heapEnabled
	}
	if fs.Changed("heap-sample-rate") {
		cfg.Profiling.HeapSampleRate = f.heapSampleRate
	}
	if fs.Changed("max-duration") {
		cfg.Profiling.MaxDuration = f.maxDuration
	}
}
