package sampling

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/pprofd/pkg/profile"
)

// WallSampleTypes are the value columns of a wall-clock profile.
var WallSampleTypes = []profile.SampleType{
	{Type: "samples", Unit: "count"},
	{Type: "wall", Unit: "nanoseconds"},
}

// WallSampler periodically snapshots every goroutine's stack. A goroutine
// seen on a stack at a tick is charged one interval of wall time, whether it
// was running or blocked.
type WallSampler struct {
	interval time.Duration
	logger   zerolog.Logger
}

// NewWallSampler creates a sampler that ticks every interval.
func NewWallSampler(interval time.Duration, logger zerolog.Logger) *WallSampler {
	return &WallSampler{
		interval: interval,
		logger:   logger.With().Str("source", "wall").Logger(),
	}
}

// Interval returns the sampling interval.
func (w *WallSampler) Interval() time.Duration {
	return w.interval
}

// Sample collects for duration d. If ctx ends first, the samples gathered so
// far are returned without error.
func (w *WallSampler) Sample(ctx context.Context, d time.Duration) (profile.Input, error) {
	if d <= 0 {
		return profile.Input{}, &profile.InvalidInputError{Sample: -1, Reason: "wall profile duration must be positive"}
	}
	if w.interval <= 0 {
		return profile.Input{}, &profile.InvalidInputError{Sample: -1, Reason: "wall sampling interval must be positive"}
	}

	start := time.Now()
	deadline := time.NewTimer(d)
	defer deadline.Stop()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	sym := newSymbolizer()
	merger := profile.NewTraceMerger(len(WallSampleTypes))
	step := w.interval.Nanoseconds()
	ticks := 0

	sample := func() {
		for _, stk := range goroutineStacks(true) {
			merger.Add(sym.trace(stk), 1, step)
		}
		ticks++
	}

loop:
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Err(ctx.Err()).Msg("Wall sampling stopped early")
			break loop
		case <-deadline.C:
			break loop
		case <-ticker.C:
			sample()
		}
	}

	elapsed := time.Since(start)
	w.logger.Debug().
		Int("ticks", ticks).
		Int("traces", merger.Len()).
		Dur("elapsed", elapsed).
		Msg("Captured wall profile")

	return profile.Input{
		SampleTypes:       WallSampleTypes,
		Samples:           merger.Samples(),
		PeriodType:        profile.SampleType{Type: "wall", Unit: "nanoseconds"},
		Period:            step,
		Time:              start,
		Duration:          elapsed,
		DefaultSampleType: "wall",
	}, nil
}
