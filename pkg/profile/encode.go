package profile

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from github.com/google/pprof/proto/profile.proto.
const (
	// message Profile
	tagProfileSampleType        protowire.Number = 1  // repeated ValueType
	tagProfileSample            protowire.Number = 2  // repeated Sample
	tagProfileLocation          protowire.Number = 4  // repeated Location
	tagProfileFunction          protowire.Number = 5  // repeated Function
	tagProfileStringTable       protowire.Number = 6  // repeated string
	tagProfileTimeNanos         protowire.Number = 9  // int64
	tagProfileDurationNanos     protowire.Number = 10 // int64
	tagProfilePeriodType        protowire.Number = 11 // ValueType
	tagProfilePeriod            protowire.Number = 12 // int64
	tagProfileComment           protowire.Number = 13 // repeated int64 (string table index)
	tagProfileDefaultSampleType protowire.Number = 14 // int64 (string table index)

	// message ValueType
	tagValueTypeType protowire.Number = 1 // int64 (string table index)
	tagValueTypeUnit protowire.Number = 2 // int64 (string table index)

	// message Sample
	tagSampleLocation protowire.Number = 1 // repeated uint64
	tagSampleValue    protowire.Number = 2 // repeated int64

	// message Location
	tagLocationID   protowire.Number = 1 // uint64
	tagLocationLine protowire.Number = 4 // repeated Line

	// message Line
	tagLineFunctionID protowire.Number = 1 // uint64
	tagLineLine       protowire.Number = 2 // int64

	// message Function
	tagFunctionID         protowire.Number = 1 // uint64
	tagFunctionName       protowire.Number = 2 // int64 (string table index)
	tagFunctionSystemName protowire.Number = 3 // int64 (string table index)
	tagFunctionFilename   protowire.Number = 4 // int64 (string table index)
	tagFunctionStartLine  protowire.Number = 5 // int64
)

// Marshal serializes p as an uncompressed profile.proto message.
//
// p is validated in full before anything is written; on error no bytes are
// returned.
func Marshal(p *Profile) ([]byte, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	var (
		b   []byte
		msg []byte // scratch for the submessage being built
	)

	for _, vt := range p.SampleTypes {
		msg = appendValueType(msg[:0], vt)
		b = appendMessage(b, tagProfileSampleType, msg)
	}
	for _, s := range p.Samples {
		msg = appendSample(msg[:0], s)
		b = appendMessage(b, tagProfileSample, msg)
	}
	for _, loc := range p.Locations {
		msg = appendLocation(msg[:0], loc)
		b = appendMessage(b, tagProfileLocation, msg)
	}
	for _, fn := range p.Functions {
		msg = appendFunction(msg[:0], fn)
		b = appendMessage(b, tagProfileFunction, msg)
	}
	for _, s := range p.StringTable {
		b = protowire.AppendTag(b, tagProfileStringTable, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}

	b = appendInt64Opt(b, tagProfileTimeNanos, p.TimeNanos)
	b = appendInt64Opt(b, tagProfileDurationNanos, p.DurationNanos)
	if p.PeriodType != (ValueType{}) {
		msg = appendValueType(msg[:0], p.PeriodType)
		b = appendMessage(b, tagProfilePeriodType, msg)
	}
	b = appendInt64Opt(b, tagProfilePeriod, p.Period)
	for _, c := range p.Comments {
		b = appendInt64(b, tagProfileComment, c)
	}
	b = appendInt64Opt(b, tagProfileDefaultSampleType, p.DefaultSampleType)

	return b, nil
}

func appendValueType(b []byte, vt ValueType) []byte {
	b = appendInt64Opt(b, tagValueTypeType, vt.Type)
	b = appendInt64Opt(b, tagValueTypeUnit, vt.Unit)
	return b
}

func appendSample(b []byte, s Sample) []byte {
	if len(s.LocationIDs) > 0 {
		var packed []byte
		for _, id := range s.LocationIDs {
			packed = protowire.AppendVarint(packed, id)
		}
		b = appendMessage(b, tagSampleLocation, packed)
	}
	if len(s.Values) > 0 {
		var packed []byte
		for _, v := range s.Values {
			packed = protowire.AppendVarint(packed, uint64(v))
		}
		b = appendMessage(b, tagSampleValue, packed)
	}
	return b
}

func appendLocation(b []byte, loc Location) []byte {
	b = appendUint64Opt(b, tagLocationID, loc.ID)
	var line []byte
	for _, ln := range loc.Lines {
		line = appendUint64Opt(line[:0], tagLineFunctionID, ln.FunctionID)
		line = appendInt64Opt(line, tagLineLine, ln.Line)
		b = appendMessage(b, tagLocationLine, line)
	}
	return b
}

func appendFunction(b []byte, fn Function) []byte {
	b = appendUint64Opt(b, tagFunctionID, fn.ID)
	b = appendInt64Opt(b, tagFunctionName, fn.Name)
	b = appendInt64Opt(b, tagFunctionSystemName, fn.SystemName)
	b = appendInt64Opt(b, tagFunctionFilename, fn.Filename)
	b = appendInt64Opt(b, tagFunctionStartLine, fn.StartLine)
	return b
}

// appendMessage writes a length-delimited field whose payload is already built.
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendInt64Opt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	return appendInt64(b, num, v)
}

func appendUint64Opt(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// Validate checks that every id and string index in p resolves.
func Validate(p *Profile) error {
	if p == nil {
		return &InternalConsistencyError{Table: "profile", Reason: "nil profile"}
	}
	if len(p.StringTable) == 0 || p.StringTable[0] != "" {
		return &InternalConsistencyError{Table: "string", Reason: "index 0 must be the empty string"}
	}
	seen := make(map[string]struct{}, len(p.StringTable))
	for i, s := range p.StringTable {
		if _, dup := seen[s]; dup {
			return &InternalConsistencyError{Table: "string", ID: uint64(i), Reason: fmt.Sprintf("duplicate string %q", s)}
		}
		seen[s] = struct{}{}
	}

	strIdx := func(table string, id uint64, idx int64) error {
		if idx < 0 || idx >= int64(len(p.StringTable)) {
			return &InternalConsistencyError{
				Table:  table,
				ID:     id,
				Reason: fmt.Sprintf("string index %d out of range [0,%d)", idx, len(p.StringTable)),
			}
		}
		return nil
	}

	for i, vt := range p.SampleTypes {
		if err := strIdx("sample_type", uint64(i), vt.Type); err != nil {
			return err
		}
		if err := strIdx("sample_type", uint64(i), vt.Unit); err != nil {
			return err
		}
	}
	if err := strIdx("period_type", 0, p.PeriodType.Type); err != nil {
		return err
	}
	if err := strIdx("period_type", 0, p.PeriodType.Unit); err != nil {
		return err
	}
	for i, c := range p.Comments {
		if err := strIdx("comment", uint64(i), c); err != nil {
			return err
		}
	}
	if err := strIdx("default_sample_type", 0, p.DefaultSampleType); err != nil {
		return err
	}

	for i, fn := range p.Functions {
		if err := checkSequentialID("function", fn.ID, i); err != nil {
			return err
		}
		for _, idx := range []int64{fn.Name, fn.SystemName, fn.Filename} {
			if err := strIdx("function", fn.ID, idx); err != nil {
				return err
			}
		}
	}

	for i, loc := range p.Locations {
		if err := checkSequentialID("location", loc.ID, i); err != nil {
			return err
		}
		for _, ln := range loc.Lines {
			if ln.FunctionID == 0 || ln.FunctionID > uint64(len(p.Functions)) {
				return &InternalConsistencyError{
					Table:  "location",
					ID:     loc.ID,
					Reason: fmt.Sprintf("references missing function %d", ln.FunctionID),
				}
			}
		}
	}

	for i, s := range p.Samples {
		if len(s.Values) != len(p.SampleTypes) {
			return &InternalConsistencyError{
				Table:  "sample",
				ID:     uint64(i),
				Reason: fmt.Sprintf("has %d values for %d sample types", len(s.Values), len(p.SampleTypes)),
			}
		}
		for _, id := range s.LocationIDs {
			if id == 0 || id > uint64(len(p.Locations)) {
				return &InternalConsistencyError{
					Table:  "sample",
					ID:     uint64(i),
					Reason: fmt.Sprintf("references missing location %d", id),
				}
			}
		}
	}
	return nil
}

// checkSequentialID enforces id == index+1, which rules out both gaps and
// duplicates.
func checkSequentialID(table string, id uint64, index int) error {
	want := uint64(index + 1)
	switch {
	case id == want:
		return nil
	case id != 0 && id < want:
		return &InternalConsistencyError{Table: table, ID: id, Reason: "duplicate id"}
	default:
		return &InternalConsistencyError{Table: table, ID: id, Reason: fmt.Sprintf("expected id %d", want)}
	}
}
