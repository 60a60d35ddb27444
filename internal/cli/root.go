// Package cli assembles the pprofd command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/coral-mesh/pprofd/internal/cli/config"
	"github.com/coral-mesh/pprofd/internal/cli/encode"
	"github.com/coral-mesh/pprofd/internal/cli/serve"
	"github.com/coral-mesh/pprofd/internal/cli/top"
	"github.com/coral-mesh/pprofd/pkg/version"
)

// NewRootCmd creates the pprofd root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pprofd",
		Short: "pprofd - pprof profiles for Go processes and stack data",
		Long: `Produce profiles in the pprof format understood by 'go tool pprof'.

- serve:  expose heap, goroutine, wall-clock and CPU profiles over HTTP
- encode: turn a stack-trace file into a pprof profile
- top:    summarize a profile from a server or from disk`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(encode.NewEncodeCmd())
	rootCmd.AddCommand(top.NewTopCmd())
	rootCmd.AddCommand(config.NewConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			cmd.Printf("pprofd version %s\n", info.Version)
			cmd.Printf("Git commit: %s\n", info.GitCommit)
			cmd.Printf("Build date: %s\n", info.BuildDate)
			cmd.Printf("Go version: %s\n", info.GoVersion)
		},
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
