// Package top implements the 'pprofd top' command.
package top

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/pprofd/internal/cli/helpers"
	cerrors "github.com/coral-mesh/pprofd/internal/errors"
	"github.com/coral-mesh/pprofd/internal/inspect"
	"github.com/coral-mesh/pprofd/internal/logging"
)

var supportedFormats = []helpers.OutputFormat{helpers.FormatTable, helpers.FormatJSON}

// NewTopCmd creates the top command.
func NewTopCmd() *cobra.Command {
	var (
		sampleType string
		count      int
		format     string
		timeout    time.Duration
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "top <url-or-file>",
		Short: "Show the functions with the largest values in a profile",
		Long: `Fetch a profile from a running pprofd (or read one from disk) and list the
functions with the largest flat values, like 'go tool pprof -top'.

Flat is the value of samples whose leaf frame is the function. Cum counts
every sample with the function anywhere on its stack. Connection failures
and 5xx responses are retried with backoff.

Examples:
  # Top in-use heap allocators
  pprofd top http://localhost:8080/debug/pprof/heap

  # Top allocators by object count
  pprofd top http://localhost:8080/debug/pprof/heap --sample-type alloc_objects

  # Where goroutines spend wall time over 10 seconds, as JSON
  pprofd top "http://localhost:8080/debug/pprof/wall?seconds=10" -o json

  # A profile on disk
  pprofd top heap.pb.gz -n 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := helpers.ParseFormat(format, supportedFormats)
			if err != nil {
				return err
			}

			logger := logging.NewWithComponent(logging.Config{
				Level:  logLevel,
				Output: cmd.ErrOrStderr(),
			}, "top")

			cfg := inspect.DefaultFetchConfig()
			if timeout > 0 {
				cfg.Timeout = timeout
			}

			prof, err := inspect.Open(cmd.Context(), args[0], cfg, logger)
			if err != nil {
				return err
			}

			sum, err := inspect.Summarize(prof, sampleType, count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outFormat {
			case helpers.FormatJSON:
				return helpers.WriteJSON(out, sum)
			default:
				styled := helpers.IsTerminal(out)
				return render(out, sum, styled, helpers.TerminalWidth(out, 120))
			}
		},
	}

	cmd.Flags().StringVarP(&sampleType, "sample-type", "t", "", "Sample type to rank by (default: the profile's default)")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of functions to show (0 for all)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-attempt HTTP timeout (default 2m)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, supportedFormats)

	cerrors.Must(cmd.RegisterFlagCompletionFunc("sample-type", completeSampleTypes), "failed to register sample-type completion")

	return cmd
}

func completeSampleTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"alloc_objects", "alloc_space", "inuse_objects", "inuse_space",
		"goroutine", "samples", "wall", "cpu",
	}, cobra.ShellCompDirectiveNoFileComp
}
