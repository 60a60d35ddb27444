package sampling

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/pprofd/pkg/profile"
)

// GoroutineSampleTypes are the value columns of a goroutine profile.
var GoroutineSampleTypes = []profile.SampleType{
	{Type: "goroutine", Unit: "count"},
}

// GoroutineSource snapshots the stacks of all live goroutines.
type GoroutineSource struct {
	logger zerolog.Logger
}

// NewGoroutineSource creates a goroutine source.
func NewGoroutineSource(logger zerolog.Logger) *GoroutineSource {
	return &GoroutineSource{logger: logger.With().Str("source", "goroutine").Logger()}
}

// Snapshot returns one sample per distinct goroutine stack, valued by the
// number of goroutines sharing it.
func (g *GoroutineSource) Snapshot(ctx context.Context) (profile.Input, error) {
	if err := ctx.Err(); err != nil {
		return profile.Input{}, err
	}

	now := time.Now()
	stacks := goroutineStacks(false)

	sym := newSymbolizer()
	merger := profile.NewTraceMerger(1)
	for _, stk := range stacks {
		merger.Add(sym.trace(stk), 1)
	}

	g.logger.Debug().
		Int("goroutines", len(stacks)).
		Int("traces", merger.Len()).
		Msg("Captured goroutine snapshot")

	return profile.Input{
		SampleTypes: GoroutineSampleTypes,
		Samples:     merger.Samples(),
		PeriodType:  profile.SampleType{Type: "goroutine", Unit: "count"},
		Period:      1,
		Time:        now,
	}, nil
}

// Dump writes the textual stack dump of all goroutines to w.
func (g *GoroutineSource) Dump(w io.Writer) error {
	buf := make([]byte, 64<<10)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		if len(buf) >= 64<<20 {
			// Truncated; the dump is still useful.
			break
		}
		buf = make([]byte, 2*len(buf))
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write goroutine dump: %w", err)
	}
	return nil
}

// goroutineStacks returns the stacks of all goroutines. The runtime records
// the calling goroutine first; skipSelf drops it.
func goroutineStacks(skipSelf bool) [][]uintptr {
	n, _ := runtime.GoroutineProfile(nil)
	var records []runtime.StackRecord
	for {
		records = make([]runtime.StackRecord, n+10)
		var ok bool
		n, ok = runtime.GoroutineProfile(records)
		if ok {
			records = records[:n]
			break
		}
	}

	if skipSelf && len(records) > 0 {
		records = records[1:]
	}

	stacks := make([][]uintptr, len(records))
	for i := range records {
		stacks[i] = records[i].Stack()
	}
	return stacks
}
