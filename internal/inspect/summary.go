package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/pprof/profile"
)

// TopFunction is one row of a top-N listing.
type TopFunction struct {
	Function string `json:"function"`
	// Flat is the value attributed to samples whose leaf is this function.
	Flat int64 `json:"flat"`
	// Cum is the value of all samples with this function anywhere on the stack.
	Cum int64 `json:"cum"`
	// Pct is Flat as a percentage of the total.
	Pct float64 `json:"flat_pct"`
}

// Summary is a per-function breakdown of one sample type.
type Summary struct {
	SampleType string        `json:"sample_type"`
	Unit       string        `json:"unit"`
	Total      int64         `json:"total"`
	Functions  []TopFunction `json:"functions"`
}

// Summarize aggregates prof by function for sampleType and returns the n
// functions with the largest flat value (all of them if n <= 0). An empty
// sampleType selects the profile's default, or its last sample type.
func Summarize(prof *profile.Profile, sampleType string, n int) (*Summary, error) {
	idx, err := sampleIndex(prof, sampleType)
	if err != nil {
		return nil, err
	}

	flat := make(map[string]int64)
	cum := make(map[string]int64)
	var total int64
	seen := make(map[string]bool)

	for _, s := range prof.Sample {
		if idx >= len(s.Value) {
			continue
		}
		v := s.Value[idx]
		if v == 0 {
			continue
		}
		total += v

		clear(seen)
		for i, loc := range s.Location {
			for j, line := range loc.Line {
				name := functionName(line)
				if i == 0 && j == 0 {
					flat[name] += v
				}
				if !seen[name] {
					seen[name] = true
					cum[name] += v
				}
			}
			if len(loc.Line) == 0 {
				name := fmt.Sprintf("0x%x", loc.Address)
				if i == 0 {
					flat[name] += v
				}
				if !seen[name] {
					seen[name] = true
					cum[name] += v
				}
			}
		}
	}

	functions := make([]TopFunction, 0, len(cum))
	for name, c := range cum {
		f := TopFunction{Function: name, Flat: flat[name], Cum: c}
		if total > 0 {
			f.Pct = float64(f.Flat) / float64(total) * 100
		}
		functions = append(functions, f)
	}

	sort.Slice(functions, func(i, j int) bool {
		a, b := functions[i], functions[j]
		if a.Flat != b.Flat {
			return a.Flat > b.Flat
		}
		if a.Cum != b.Cum {
			return a.Cum > b.Cum
		}
		return a.Function < b.Function
	})
	if n > 0 && len(functions) > n {
		functions = functions[:n]
	}

	st := prof.SampleType[idx]
	return &Summary{
		SampleType: st.Type,
		Unit:       st.Unit,
		Total:      total,
		Functions:  functions,
	}, nil
}

func sampleIndex(prof *profile.Profile, sampleType string) (int, error) {
	if len(prof.SampleType) == 0 {
		return 0, fmt.Errorf("profile has no sample types")
	}
	if sampleType == "" {
		sampleType = prof.DefaultSampleType
	}
	if sampleType == "" {
		return len(prof.SampleType) - 1, nil
	}

	names := make([]string, len(prof.SampleType))
	for i, st := range prof.SampleType {
		if st.Type == sampleType {
			return i, nil
		}
		names[i] = st.Type
	}
	return 0, fmt.Errorf("sample type %q not found (available: %s)", sampleType, strings.Join(names, ", "))
}

func functionName(line profile.Line) string {
	if line.Function == nil || line.Function.Name == "" {
		return "<unknown>"
	}
	return line.Function.Name
}
