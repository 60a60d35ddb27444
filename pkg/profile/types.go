// Package profile encodes per-stack-trace measurements into pprof profiles.
//
// The package turns an Input (a list of stack traces with aligned measurement
// values) into gzip-compressed profile.proto bytes that `go tool pprof` and
// other third-party tools can read. Strings, functions and locations are
// deduplicated into tables owned by a single Session, so encoding is
// deterministic: the same Input always produces the same bytes.
//
// Example usage:
//
//	data, err := profile.Encode(profile.Input{
//	    SampleTypes: []profile.SampleType{{Type: "objects", Unit: "count"}},
//	    Samples: []profile.TraceSample{{
//	        Trace:  []profile.Frame{{FunctionName: "main.work", FileName: "main.go", DefiningLine: 10, CallLine: 12}},
//	        Values: []int64{3},
//	    }},
//	    Period: 1,
//	})
package profile

import "time"

// Frame is one entry of a stack trace as supplied by a sampling source.
type Frame struct {
	FunctionName string
	FileName     string
	// DefiningLine is the line the function starts on.
	DefiningLine int64
	// CallLine is the line executing in this frame.
	CallLine int64
}

// SampleType declares the meaning of one position in every value tuple.
type SampleType struct {
	Type string `yaml:"type" json:"type"`
	Unit string `yaml:"unit" json:"unit"`
}

// TraceSample is a stack trace (leaf first) and its measurements.
type TraceSample struct {
	Trace  []Frame
	Values []int64
}

// Input is the fully materialized data handed to the encoder.
type Input struct {
	SampleTypes []SampleType
	// Samples holds at most one entry per distinct trace. Order is preserved.
	Samples []TraceSample

	PeriodType SampleType
	// Period is the sampling period (1 means every event was recorded).
	// Values are never scaled by it.
	Period int64

	Time     time.Time
	Duration time.Duration

	Comments          []string
	DefaultSampleType string
}

// ValueType is a SampleType resolved to string table indices.
type ValueType struct {
	Type int64
	Unit int64
}

// Line is a (function, call line) pair inside a Location.
type Line struct {
	FunctionID uint64
	Line       int64
}

// Location is a deduplicated call site.
type Location struct {
	ID    uint64
	Lines []Line
}

// Function is a deduplicated (name, file, start line) triple.
type Function struct {
	ID         uint64
	Name       int64
	SystemName int64
	Filename   int64
	StartLine  int64
}

// Sample references its stack by location id, leaf first.
type Sample struct {
	LocationIDs []uint64
	Values      []int64
}

// Profile is the assembled, self-consistent record ready for marshaling.
type Profile struct {
	SampleTypes []ValueType
	Samples     []Sample
	Locations   []Location
	Functions   []Function
	StringTable []string

	PeriodType ValueType
	Period     int64

	TimeNanos     int64
	DurationNanos int64

	Comments          []int64
	DefaultSampleType int64
}
