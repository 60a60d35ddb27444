package encode

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/pprofd/internal/testutil"
)

const stacks = `
sample_types: [{type: goroutine, unit: count}]
samples:
  - values: [2]
    frames:
      - {function: main.worker, file: main.go, start_line: 20, line: 24}
      - {function: main.main, file: main.go, start_line: 5, line: 9}
`

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()
	cmd := NewEncodeCmd()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return stdout, stderr, cmd.Execute()
}

func TestEncode_FileToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "stacks.yaml")
	out := filepath.Join(dir, "goroutine.pb.gz")
	require.NoError(t, os.WriteFile(in, []byte(stacks), 0o600))

	_, stderr, err := execute(t, "", in, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "Wrote")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])

	prof := testutil.ParseProfile(t, data)
	assert.Equal(t, []string{"goroutine/count"}, testutil.SampleTypes(prof))
	require.Len(t, prof.Sample, 1)
	assert.Equal(t, []int64{2}, prof.Sample[0].Value)
	assert.True(t, testutil.HasFunction(prof, "main.worker"))
}

func TestEncode_StdinToStdout(t *testing.T) {
	stdout, _, err := execute(t, stacks, "-", "--uncompressed")
	require.NoError(t, err)

	data := stdout.Bytes()
	require.NotEmpty(t, data)
	assert.NotEqual(t, byte(0x1f), data[0], "uncompressed output")
	testutil.ParseProfile(t, data)
}

func TestEncode_Errors(t *testing.T) {
	_, _, err := execute(t, "", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "does not exist")

	_, _, err = execute(t, "sample_types: []\nsamples: []\n", "-")
	assert.ErrorContains(t, err, "invalid profile input")

	_, _, err = execute(t, "sample_types: [{type: a, unit: count}]\nsamples: [{values: [1, 2]}]\n", "-")
	assert.ErrorContains(t, err, "sample 0")

	_, _, err = execute(t, "")
	assert.Error(t, err, "stack file argument is required")
}
