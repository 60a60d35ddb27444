// Package encode implements the 'pprofd encode' command.
package encode

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/pprofd/internal/safe"
	"github.com/coral-mesh/pprofd/internal/stackfile"
	"github.com/coral-mesh/pprofd/pkg/profile"
)

// NewEncodeCmd creates the encode command.
func NewEncodeCmd() *cobra.Command {
	var (
		output       string
		uncompressed bool
	)

	cmd := &cobra.Command{
		Use:   "encode <stack-file>",
		Short: "Encode a stack file into a pprof profile",
		Long: `Read stack traces with measurements from a YAML or JSON file and write a
gzip-compressed pprof profile.

Frames are listed leaf first. Repeated stacks are merged by summing values.
Use "-" to read the stack file from stdin.

Stack file format:
  sample_types:
    - {type: objects, unit: count}
    - {type: space, unit: bytes}
  period: 1
  samples:
    - values: [3, 1536]
      frames:
        - {function: main.alloc, file: main.go, start_line: 10, line: 14}
        - {function: main.main, file: main.go, start_line: 3, line: 6}

Examples:
  # Encode and inspect with the Go tooling
  pprofd encode stacks.yaml -o heap.pb.gz
  go tool pprof -top heap.pb.gz

  # Pipe through stdin and stdout
  cat stacks.json | pprofd encode - > profile.pb.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			encoded, err := encode(data, uncompressed)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(encoded)
				return err
			}
			if err := safe.WriteFile(output, encoded, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(encoded), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&uncompressed, "uncompressed", false, "Write raw profile.proto without gzip")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, safe.DefaultMaxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > safe.DefaultMaxFileSize {
			return nil, fmt.Errorf("stdin exceeds maximum allowed size of %d bytes", safe.DefaultMaxFileSize)
		}
		return data, nil
	}

	data, err := safe.ReadFile(path, nil)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("stack file %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to read stack file: %w", err)
	}
	return data, nil
}

func encode(data []byte, uncompressed bool) ([]byte, error) {
	f, err := stackfile.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return profile.EncodeWithOptions(f.Input(), profile.EncodeOptions{Uncompressed: uncompressed})
}
