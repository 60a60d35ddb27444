package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pprofd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLayeredLoader_Precedence(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:7000"
logging:
  level: warn
profiling:
  wall_interval: 5ms
  heap_sample_rate: 1024
`)

	l := NewLayeredLoader()
	l.lookup = mapLookup(map[string]string{
		"PPROFD_LOG_LEVEL": "debug",
	})

	cfg, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Server.Addr = %q, want file value", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want env value %q", cfg.Logging.Level, "debug")
	}
	if cfg.Profiling.WallInterval != 5*time.Millisecond {
		t.Errorf("Profiling.WallInterval = %v, want 5ms", cfg.Profiling.WallInterval)
	}
	if cfg.Profiling.HeapSampleRate != 1024 {
		t.Errorf("Profiling.HeapSampleRate = %d, want 1024", cfg.Profiling.HeapSampleRate)
	}
	if cfg.Server.ShutdownTimeout != Default().Server.ShutdownTimeout {
		t.Errorf("Server.ShutdownTimeout = %v, want default", cfg.Server.ShutdownTimeout)
	}
}

func TestLayeredLoader_ConfigEnvVar(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \"127.0.0.1:7001\"\n")

	l := NewLayeredLoader()
	l.lookup = mapLookup(map[string]string{"PPROFD_CONFIG": path})

	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7001" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:7001")
	}
}

func TestLayeredLoader_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	l := NewLayeredLoader()
	l.lookup = mapLookup(nil)
	if _, err := l.Load(missing); err == nil {
		t.Error("Load() with a missing explicit file should fail")
	}

	// A dangling PPROFD_CONFIG is tolerated.
	l.lookup = mapLookup(map[string]string{"PPROFD_CONFIG": missing})
	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLayeredLoader_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated\n")

	l := NewLayeredLoader()
	l.lookup = mapLookup(nil)
	_, err := l.Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %q, want parse failure", err.Error())
	}
}

func TestLayeredLoader_DisableLayers(t *testing.T) {
	l := NewLayeredLoader()
	l.lookup = mapLookup(map[string]string{"PPROFD_ADDR": "127.0.0.1:9"})
	l.DisableLayer(LayerDefaults)
	l.DisableLayer(LayerEnv)

	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Addr != "" {
		t.Errorf("Server.Addr = %q, want empty with defaults and env disabled", cfg.Server.Addr)
	}

	l.EnableLayer(LayerEnv)
	cfg, err = l.Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9" {
		t.Errorf("Server.Addr = %q, want env value", cfg.Server.Addr)
	}
}

func TestFlags_ApplyOnlyChanged(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := RegisterFlags(fs)

	if err := fs.Parse([]string{"--addr", "127.0.0.1:6061", "--max-duration", "1m"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	cfg := Default()
	cfg.Logging.Level = "error"
	flags.Apply(fs, cfg)

	if cfg.Server.Addr != "127.0.0.1:6061" {
		t.Errorf("Server.Addr = %q, want flag value", cfg.Server.Addr)
	}
	if cfg.Profiling.MaxDuration != time.Minute {
		t.Errorf("Profiling.MaxDuration = %v, want 1m", cfg.Profiling.MaxDuration)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, unchanged flag must not override", cfg.Logging.Level)
	}
}
