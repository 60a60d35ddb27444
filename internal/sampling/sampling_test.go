package sampling

import (
	"strings"
	"sync"
	"testing"

	"github.com/coral-mesh/pprofd/pkg/profile"
)

// parkForSnapshot blocks until release is closed.
//
//go:noinline
func parkForSnapshot(release <-chan struct{}) {
	<-release
}

// parkGoroutines starts n goroutines parked in parkForSnapshot and returns a
// func that releases them and waits for them to exit.
func parkGoroutines(t *testing.T, n int) func() {
	t.Helper()
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			parkForSnapshot(release)
		}()
	}
	stop := func() {
		close(release)
		wg.Wait()
	}
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			stop()
		}
	})
	return stop
}

func traceHas(trace []profile.Frame, substr string) bool {
	for _, f := range trace {
		if strings.Contains(f.FunctionName, substr) {
			return true
		}
	}
	return false
}

// valuesFor sums the first value column over samples whose trace contains substr.
func valuesFor(in profile.Input, substr string) int64 {
	var total int64
	for _, s := range in.Samples {
		if traceHas(s.Trace, substr) {
			total += s.Values[0]
		}
	}
	return total
}
