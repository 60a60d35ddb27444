package sampling

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/pprofd/internal/testutil"
	"github.com/coral-mesh/pprofd/pkg/profile"
)

var heapSink [][]byte

//go:noinline
func allocateForHeapTest() {
	for i := 0; i < 64; i++ {
		heapSink = append(heapSink, make([]byte, 4096))
	}
}

func withMemProfileRate(t *testing.T, rate int) {
	t.Helper()
	old := runtime.MemProfileRate
	runtime.MemProfileRate = rate
	t.Cleanup(func() { runtime.MemProfileRate = old })
}

func TestHeapSource_Snapshot(t *testing.T) {
	withMemProfileRate(t, 1)
	t.Cleanup(func() { heapSink = nil })

	allocateForHeapTest()
	runtime.GC()

	src := NewHeapSource(testutil.NewTestLogger(t))
	in, err := src.Snapshot(context.Background(), HeapOptions{GC: true})
	require.NoError(t, err)

	assert.Equal(t, HeapSampleTypes, in.SampleTypes)
	assert.Equal(t, profile.SampleType{Type: "space", Unit: "bytes"}, in.PeriodType)
	assert.Equal(t, int64(1), in.Period)
	assert.Equal(t, "inuse_space", in.DefaultSampleType)
	require.NotEmpty(t, in.Samples)

	var found bool
	for _, s := range in.Samples {
		require.Len(t, s.Values, 4)
		for _, v := range s.Values {
			assert.GreaterOrEqual(t, v, int64(0))
		}
		if traceHas(s.Trace, "allocateForHeapTest") {
			found = true
			assert.GreaterOrEqual(t, s.Values[1], int64(64*4096), "alloc_space is unscaled")
			// Runtime allocation frames are trimmed from the leaf.
			assert.NotContains(t, s.Trace[0].FunctionName, "runtime.mallocgc")
		}
	}
	assert.True(t, found, "allocation site should appear in the heap profile")

	data, err := profile.Encode(in)
	require.NoError(t, err)
	prof := testutil.ParseProfile(t, data)
	assert.Equal(t, []string{"alloc_objects/count", "alloc_space/bytes", "inuse_objects/count", "inuse_space/bytes"}, testutil.SampleTypes(prof))
	assert.Equal(t, "inuse_space", prof.DefaultSampleType)
	assert.True(t, testutil.HasFunction(prof, "allocateForHeapTest"))
}

func TestHeapSource_Unavailable(t *testing.T) {
	withMemProfileRate(t, 0)

	_, err := NewHeapSource(testutil.NewTestLogger(t)).Snapshot(context.Background(), HeapOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, profile.ErrUnavailableSource)

	var ue *profile.UnavailableSourceError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "heap", ue.Source)
}

func TestHeapSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHeapSource(testutil.NewTestLogger(t)).Snapshot(ctx, HeapOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigureHeap(t *testing.T) {
	withMemProfileRate(t, 512*1024)

	ConfigureHeap(true, 0)
	assert.Equal(t, 512*1024, runtime.MemProfileRate, "zero rate keeps the current setting")

	ConfigureHeap(true, 4096)
	assert.Equal(t, 4096, runtime.MemProfileRate)

	ConfigureHeap(false, 4096)
	assert.Equal(t, 0, runtime.MemProfileRate)
}
