package helpers

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/pprofd/internal/config"
	"github.com/coral-mesh/pprofd/internal/logging"
)

// LoadConfig resolves defaults, the config file, the environment and the
// flags changed on cmd, then validates the result.
func LoadConfig(cmd *cobra.Command, flags *config.Flags) (*config.Config, error) {
	cfg, err := config.NewLayeredLoader().Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	flags.Apply(cmd.Flags(), cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg *config.Config, component string) zerolog.Logger {
	return logging.NewWithComponent(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	}, component)
}
