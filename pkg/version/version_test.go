package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	info := Get()
	if info.Version != "v1.2.3" {
		t.Errorf("Version = %q, want ldflags value", info.Version)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should be set")
	}
	if !strings.HasPrefix(info.String(), "pprofd v1.2.3 (commit ") {
		t.Errorf("String() = %q", info.String())
	}
}
