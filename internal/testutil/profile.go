package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/require"
)

// ParseProfile decodes a pprof payload (gzip'd or raw) with the reference
// decoder and checks its internal consistency.
func ParseProfile(t *testing.T, data []byte) *profile.Profile {
	t.Helper()

	prof, err := profile.Parse(bytes.NewReader(data))
	require.NoError(t, err, "profile should decode")
	require.NoError(t, prof.CheckValid(), "profile should be valid")
	return prof
}

// SampleTypes returns the "type/unit" pairs of a decoded profile.
func SampleTypes(prof *profile.Profile) []string {
	out := make([]string, 0, len(prof.SampleType))
	for _, st := range prof.SampleType {
		out = append(out, st.Type+"/"+st.Unit)
	}
	return out
}

// HasFunction reports whether any sample's stack contains a function whose
// name contains substr.
func HasFunction(prof *profile.Profile, substr string) bool {
	for _, s := range prof.Sample {
		for _, loc := range s.Location {
			for _, line := range loc.Line {
				if line.Function != nil && strings.Contains(line.Function.Name, substr) {
					return true
				}
			}
		}
	}
	return false
}
