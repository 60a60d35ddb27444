package sampling

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/pprofd/pkg/profile"
)

// HeapSampleTypes are the value columns of a heap profile, in order.
var HeapSampleTypes = []profile.SampleType{
	{Type: "alloc_objects", Unit: "count"},
	{Type: "alloc_space", Unit: "bytes"},
	{Type: "inuse_objects", Unit: "count"},
	{Type: "inuse_space", Unit: "bytes"},
}

// ConfigureHeap sets runtime.MemProfileRate. A disabled heap source sets it
// to zero, which makes Snapshot report the source as unavailable. A rate of
// zero while enabled keeps the runtime default.
//
// It must run before the allocations of interest, ideally at startup.
func ConfigureHeap(enabled bool, rate int) {
	switch {
	case !enabled:
		runtime.MemProfileRate = 0
	case rate > 0:
		runtime.MemProfileRate = rate
	}
}

// HeapOptions tune a single heap snapshot.
type HeapOptions struct {
	// GC runs a garbage collection first so in-use figures are current.
	GC bool
}

// HeapSource snapshots the runtime's sampled allocation records.
type HeapSource struct {
	logger zerolog.Logger
}

// NewHeapSource creates a heap source.
func NewHeapSource(logger zerolog.Logger) *HeapSource {
	return &HeapSource{logger: logger.With().Str("source", "heap").Logger()}
}

// Snapshot returns the current heap profile input. Values are the raw
// sampled counts; the period records the sampling rate in bytes.
func (h *HeapSource) Snapshot(ctx context.Context, opts HeapOptions) (profile.Input, error) {
	if err := ctx.Err(); err != nil {
		return profile.Input{}, err
	}

	rate := runtime.MemProfileRate
	if rate <= 0 {
		return profile.Input{}, &profile.UnavailableSourceError{
			Source: "heap",
			Reason: "allocation sampling is disabled",
		}
	}

	if opts.GC {
		runtime.GC()
	}

	now := time.Now()
	records := memProfile()

	sym := newSymbolizer()
	merger := profile.NewTraceMerger(len(HeapSampleTypes))
	for i := range records {
		r := &records[i]
		merger.Add(sym.trace(trimRuntime(r.Stack())),
			r.AllocObjects, r.AllocBytes, r.InUseObjects(), r.InUseBytes())
	}

	h.logger.Debug().
		Int("records", len(records)).
		Int("traces", merger.Len()).
		Int("rate", rate).
		Bool("gc", opts.GC).
		Msg("Captured heap snapshot")

	return profile.Input{
		SampleTypes:       HeapSampleTypes,
		Samples:           merger.Samples(),
		PeriodType:        profile.SampleType{Type: "space", Unit: "bytes"},
		Period:            int64(rate),
		Time:              now,
		DefaultSampleType: "inuse_space",
	}, nil
}

// memProfile copies all records, growing the buffer until it fits.
func memProfile() []runtime.MemProfileRecord {
	n, _ := runtime.MemProfile(nil, true)
	for {
		records := make([]runtime.MemProfileRecord, n+50)
		var ok bool
		n, ok = runtime.MemProfile(records, true)
		if ok {
			return records[:n]
		}
	}
}
