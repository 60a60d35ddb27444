package top

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/pprofd/internal/inspect"
	"github.com/coral-mesh/pprofd/pkg/profile"
)

func heapServer(t *testing.T) *httptest.Server {
	t.Helper()
	frame := func(name string, line int64) profile.Frame {
		return profile.Frame{FunctionName: name, FileName: "srv.go", DefiningLine: 1, CallLine: line}
	}
	data, err := profile.Encode(profile.Input{
		SampleTypes: []profile.SampleType{{Type: "inuse_objects", Unit: "count"}, {Type: "inuse_space", Unit: "bytes"}},
		Samples: []profile.TraceSample{
			{Trace: []profile.Frame{frame("main.cache", 5), frame("main.main", 9)}, Values: []int64{10, 3 << 20}},
			{Trace: []profile.Frame{frame("main.buffer", 6), frame("main.main", 10)}, Values: []int64{40, 1 << 20}},
		},
		PeriodType:        profile.SampleType{Type: "space", Unit: "bytes"},
		Period:            512 * 1024,
		DefaultSampleType: "inuse_space",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewTopCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), err
}

func TestTop_Table(t *testing.T) {
	srv := heapServer(t)

	out, err := execute(t, srv.URL+"/debug/pprof/heap")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "by inuse_space (total 4.00MB)")
	assert.Contains(t, lines[2], "main.cache")
	assert.Contains(t, lines[2], "3.00MB")
	assert.Contains(t, lines[2], "75.00%")
	assert.Contains(t, lines[3], "main.buffer")
	assert.Contains(t, lines[4], "main.main")
}

func TestTop_JSONBySampleType(t *testing.T) {
	srv := heapServer(t)

	out, err := execute(t, srv.URL, "--sample-type", "inuse_objects", "-n", "1", "-o", "json")
	require.NoError(t, err)

	var sum inspect.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "inuse_objects", sum.SampleType)
	assert.Equal(t, int64(50), sum.Total)
	require.Len(t, sum.Functions, 1)
	assert.Equal(t, "main.buffer", sum.Functions[0].Function)
	assert.Equal(t, 80.0, sum.Functions[0].Pct)
}

func TestTop_Errors(t *testing.T) {
	srv := heapServer(t)

	_, err := execute(t, srv.URL, "-o", "csv")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = execute(t, srv.URL, "--sample-type", "cpu")
	assert.ErrorContains(t, err, "not found")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "512B", formatValue(512, "bytes"))
	assert.Equal(t, "1.50kB", formatValue(1536, "bytes"))
	assert.Equal(t, "2.00GB", formatValue(2<<30, "bytes"))
	assert.Equal(t, "1.50s", formatValue(1500000000, "nanoseconds"))
	assert.Equal(t, "10.00ms", formatValue(10000000, "nanoseconds"))
	assert.Equal(t, "42", formatValue(42, "count"))
}

func TestRender_Styled(t *testing.T) {
	sum := &inspect.Summary{
		SampleType: "wall",
		Unit:       "nanoseconds",
		Total:      100,
		Functions: []inspect.TopFunction{
			{Function: "github.com/example/service/internal/handlers.(*Server).handleRequestWithVeryLongName", Flat: 90, Cum: 100, Pct: 90},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, sum, true, 60))
	assert.Contains(t, buf.String(), "…")
	assert.Contains(t, buf.String(), "90.00%")
}
