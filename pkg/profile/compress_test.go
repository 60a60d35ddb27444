package profile

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_StandardGzip(t *testing.T) {
	payload := bytes.Repeat([]byte("profile"), 100)

	out, err := Compress(payload)
	require.NoError(t, err)
	require.Greater(t, len(out), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, out[:2])

	zr, err := gzip.NewReader(bytes.NewReader(out))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestCompress_Empty(t *testing.T) {
	out, err := Compress(nil)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(out))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEncode_CompressedByDefault(t *testing.T) {
	in := Input{SampleTypes: heapTypes}

	compressed, err := Encode(in)
	require.NoError(t, err)
	raw, err := EncodeWithOptions(in, EncodeOptions{Uncompressed: true})
	require.NoError(t, err)

	assert.Equal(t, []byte{0x1f, 0x8b}, compressed[:2])

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}
