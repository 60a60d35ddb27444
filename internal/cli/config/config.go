// Package config implements the 'pprofd config' command family.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/pprofd/internal/cli/helpers"
	"github.com/coral-mesh/pprofd/internal/config"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect pprofd configuration",
		Long: `Inspect the configuration pprofd serve would run with.

Configuration Priority (highest first):
  1. Command-line flags
  2. PPROFD_* environment variables
  3. YAML file from --config or $PPROFD_CONFIG
  4. Built-in defaults`,
	}

	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newValidateCmd())

	return cmd
}

func newViewCmd() *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := helpers.LoadConfig(cmd, flags)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}

	flags = config.RegisterFlags(cmd.Flags())
	return cmd
}

func newValidateCmd() *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := helpers.LoadConfig(cmd, flags); err != nil {
				return err
			}
			cmd.Println("✓ Configuration is valid")
			return nil
		},
	}

	flags = config.RegisterFlags(cmd.Flags())
	return cmd
}
