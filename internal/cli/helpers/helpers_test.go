package helpers

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/pprofd/internal/config"
)

func TestParseFormat(t *testing.T) {
	supported := []OutputFormat{FormatTable, FormatJSON}

	f, err := ParseFormat("json", supported)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("csv", supported)
	assert.ErrorContains(t, err, "supported: table, json")
}

func TestAddFormatFlag(t *testing.T) {
	var format string
	cmd := &cobra.Command{Use: "top"}
	AddFormatFlag(cmd, &format, FormatTable, []OutputFormat{FormatTable, FormatJSON})

	require.NoError(t, cmd.Flags().Parse([]string{"-o", "json"}))
	assert.Equal(t, "json", format)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]int{"flat": 3}))
	assert.Equal(t, "{\n  \"flat\": 3\n}\n", buf.String())
}

func TestIsTerminal_Buffer(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, 80, TerminalWidth(&buf, 80))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PPROFD_CONFIG", "")
	t.Setenv("PPROFD_LOG_LEVEL", "debug")

	cmd := &cobra.Command{Use: "serve"}
	flags := config.RegisterFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse([]string{"--addr", "127.0.0.1:9999"}))

	cfg, err := LoadConfig(cmd, flags)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)

	require.NoError(t, cmd.Flags().Set("heap-sample-rate", "-5"))
	_, err = LoadConfig(cmd, flags)
	assert.ErrorContains(t, err, "heap sample rate must not be negative")
}
