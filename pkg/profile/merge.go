package profile

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// TraceMerger folds repeated stack traces into one TraceSample each by
// summing their values. Sampling sources use it to satisfy the encoder's
// one-entry-per-trace contract. Output order is first-seen order.
type TraceMerger struct {
	width   int
	samples []TraceSample
	buckets map[uint64][]int
	key     []byte
}

// NewTraceMerger creates a merger for value tuples of the given width.
func NewTraceMerger(width int) *TraceMerger {
	return &TraceMerger{
		width:   width,
		buckets: make(map[uint64][]int),
	}
}

// Add records values for trace. Values beyond the merger's width are ignored
// and missing ones count as zero. The trace slice is retained.
func (m *TraceMerger) Add(trace []Frame, values ...int64) {
	h := m.hash(trace)
	for _, i := range m.buckets[h] {
		if framesEqual(m.samples[i].Trace, trace) {
			addValues(m.samples[i].Values, values)
			return
		}
	}

	sum := make([]int64, m.width)
	addValues(sum, values)
	m.buckets[h] = append(m.buckets[h], len(m.samples))
	m.samples = append(m.samples, TraceSample{Trace: trace, Values: sum})
}

// Len returns the number of distinct traces seen.
func (m *TraceMerger) Len() int {
	return len(m.samples)
}

// Samples returns the merged samples in first-seen order.
func (m *TraceMerger) Samples() []TraceSample {
	out := make([]TraceSample, len(m.samples))
	copy(out, m.samples)
	return out
}

func (m *TraceMerger) hash(trace []Frame) uint64 {
	k := m.key[:0]
	for _, f := range trace {
		k = append(k, f.FunctionName...)
		k = append(k, 0)
		k = append(k, f.FileName...)
		k = append(k, 0)
		k = binary.AppendVarint(k, f.DefiningLine)
		k = binary.AppendVarint(k, f.CallLine)
	}
	m.key = k
	return xxh3.Hash(k)
}

func addValues(dst, src []int64) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] += src[i]
	}
}

func framesEqual(a, b []Frame) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
