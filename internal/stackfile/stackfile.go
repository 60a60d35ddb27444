// Package stackfile reads stack-trace measurement files (YAML or JSON) into
// profile.Input values for `pprofd encode`.
//
//	sample_types:
//	  - {type: objects, unit: count}
//	  - {type: space, unit: bytes}
//	period_type: {type: space, unit: bytes}
//	period: 524288
//	default_sample_type: space
//	samples:
//	  - values: [3, 1536]
//	    frames:            # leaf first
//	      - {function: main.alloc, file: main.go, start_line: 10, line: 14}
//	      - {function: main.main, file: main.go, start_line: 3, line: 6}
package stackfile

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/pprofd/pkg/profile"
)

// File is the on-disk layout.
type File struct {
	SampleTypes       []profile.SampleType `yaml:"sample_types"`
	PeriodType        profile.SampleType   `yaml:"period_type"`
	Period            int64                `yaml:"period"`
	DefaultSampleType string               `yaml:"default_sample_type"`
	Comments          []string             `yaml:"comments"`
	Time              time.Time            `yaml:"time"`
	Duration          time.Duration        `yaml:"duration"`
	Samples           []Sample             `yaml:"samples"`
}

// Sample is one stack with its measurements.
type Sample struct {
	Values []int64 `yaml:"values"`
	Frames []Frame `yaml:"frames"`
}

// Frame is one stack entry.
type Frame struct {
	Function  string `yaml:"function"`
	File      string `yaml:"file"`
	StartLine int64  `yaml:"start_line"`
	Line      int64  `yaml:"line"`
}

// Parse decodes a stack file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse stack file: %w", err)
	}
	if f.Period == 0 {
		f.Period = 1
	}
	return &f, nil
}

// Input converts the file into encoder input. Repeated stacks are merged by
// summing their values.
func (f *File) Input() profile.Input {
	merger := profile.NewTraceMerger(len(f.SampleTypes))
	for _, s := range f.Samples {
		trace := make([]profile.Frame, len(s.Frames))
		for i, fr := range s.Frames {
			trace[i] = profile.Frame{
				FunctionName: fr.Function,
				FileName:     fr.File,
				DefiningLine: fr.StartLine,
				CallLine:     fr.Line,
			}
		}
		merger.Add(trace, s.Values...)
	}

	return profile.Input{
		SampleTypes:       f.SampleTypes,
		Samples:           merger.Samples(),
		PeriodType:        f.PeriodType,
		Period:            f.Period,
		Time:              f.Time,
		Duration:          f.Duration,
		Comments:          f.Comments,
		DefaultSampleType: f.DefaultSampleType,
	}
}

// Validate checks the shape of the file before merging, so value-count
// and sign mistakes are reported against the sample as written.
func (f *File) Validate() error {
	for i, s := range f.Samples {
		if len(s.Values) != len(f.SampleTypes) {
			return &profile.InvalidInputError{
				Sample: i,
				Reason: fmt.Sprintf("has %d values, want %d", len(s.Values), len(f.SampleTypes)),
			}
		}
		for j, v := range s.Values {
			if v < 0 {
				return &profile.InvalidInputError{
					Sample: i,
					Reason: fmt.Sprintf("value %d is negative (%d)", j, v),
				}
			}
		}
	}
	return nil
}
