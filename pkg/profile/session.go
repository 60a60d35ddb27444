package profile

import "fmt"

// Session owns the string, function and location tables for a single
// encode. A Session must not be reused or shared between goroutines; Encode
// creates a fresh one per call.
type Session struct {
	strings   *StringTable
	functions *FunctionTable
	locations *LocationTable
}

// NewSession returns a session with empty tables.
func NewSession() *Session {
	strs := NewStringTable()
	return &Session{
		strings:   strs,
		functions: NewFunctionTable(strs),
		locations: NewLocationTable(),
	}
}

// Build validates the input, resolves every trace against the session's
// tables and returns the assembled profile.
func (s *Session) Build(in Input) (*Profile, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// Sample types are interned first so they occupy the lowest indices.
	sampleTypes := make([]ValueType, len(in.SampleTypes))
	for i, st := range in.SampleTypes {
		sampleTypes[i] = s.valueType(st)
	}

	samples := s.aggregate(in.Samples)
	return s.assemble(in, sampleTypes, samples), nil
}

// aggregate resolves each trace to location ids, keeping the supplied order.
func (s *Session) aggregate(in []TraceSample) []Sample {
	samples := make([]Sample, 0, len(in))
	for _, ts := range in {
		locs := make([]uint64, len(ts.Trace))
		for i, f := range ts.Trace {
			fnID := s.functions.ID(f.FunctionName, f.FileName, f.DefiningLine)
			locs[i] = s.locations.ID(fnID, f.CallLine)
		}
		values := make([]int64, len(ts.Values))
		copy(values, ts.Values)
		samples = append(samples, Sample{LocationIDs: locs, Values: values})
	}
	return samples
}

// assemble binds metadata and snapshots the tables into a Profile.
func (s *Session) assemble(in Input, sampleTypes []ValueType, samples []Sample) *Profile {
	p := &Profile{
		SampleTypes: sampleTypes,
		Samples:     samples,
		Period:      in.Period,
	}
	if p.Period < 1 {
		p.Period = 1
	}
	if in.PeriodType != (SampleType{}) {
		p.PeriodType = s.valueType(in.PeriodType)
	}
	if !in.Time.IsZero() {
		p.TimeNanos = in.Time.UnixNano()
	}
	p.DurationNanos = in.Duration.Nanoseconds()
	for _, c := range in.Comments {
		p.Comments = append(p.Comments, s.strings.Intern(c))
	}
	if in.DefaultSampleType != "" {
		p.DefaultSampleType = s.strings.Intern(in.DefaultSampleType)
	}

	p.Locations = s.locations.Locations()
	p.Functions = s.functions.Functions()
	p.StringTable = s.strings.Strings()
	return p
}

func (s *Session) valueType(st SampleType) ValueType {
	return ValueType{
		Type: s.strings.Intern(st.Type),
		Unit: s.strings.Intern(st.Unit),
	}
}

func validateInput(in Input) error {
	if len(in.SampleTypes) == 0 {
		return &InvalidInputError{Sample: -1, Reason: "no sample types declared"}
	}
	for i, st := range in.SampleTypes {
		if st.Type == "" {
			return &InvalidInputError{Sample: -1, Reason: fmt.Sprintf("sample type %d has no name", i)}
		}
	}
	if in.Duration < 0 {
		return &InvalidInputError{Sample: -1, Reason: "negative duration"}
	}

	for i, ts := range in.Samples {
		if len(ts.Values) != len(in.SampleTypes) {
			return &InvalidInputError{
				Sample: i,
				Reason: fmt.Sprintf("got %d values for %d sample types", len(ts.Values), len(in.SampleTypes)),
			}
		}
		for j, v := range ts.Values {
			if v < 0 {
				return &InvalidInputError{Sample: i, Reason: fmt.Sprintf("value %d is negative (%d)", j, v)}
			}
		}
		for j, f := range ts.Trace {
			if f.FunctionName == "" {
				return &InvalidInputError{Sample: i, Reason: fmt.Sprintf("frame %d has no function name", j)}
			}
		}
	}
	return nil
}

// EncodeOptions tweaks Encode. The zero value produces the canonical
// gzip-compressed output.
type EncodeOptions struct {
	// Uncompressed skips gzip and returns raw profile.proto bytes.
	Uncompressed bool
}

// Encode builds, marshals and compresses in with a fresh Session.
func Encode(in Input) ([]byte, error) {
	return EncodeWithOptions(in, EncodeOptions{})
}

// EncodeWithOptions is Encode with explicit options.
func EncodeWithOptions(in Input, opts EncodeOptions) ([]byte, error) {
	p, err := NewSession().Build(in)
	if err != nil {
		return nil, err
	}

	data, err := Marshal(p)
	if err != nil {
		return nil, err
	}
	if opts.Uncompressed {
		return data, nil
	}

	return Compress(data)
}
