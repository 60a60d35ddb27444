// Package sampling captures heap, goroutine and wall-clock snapshots of the
// running process and turns them into profile.Input values.
//
// Every source merges identical traces before handing them over, so the
// encoder always receives at most one sample per distinct trace.
package sampling

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/coral-mesh/pprofd/pkg/profile"
)

// symbolizer resolves return PCs to frames. It caches per PC and is owned
// by a single snapshot, so it needs no locking.
type symbolizer struct {
	cache map[uintptr][]profile.Frame
}

func newSymbolizer() *symbolizer {
	return &symbolizer{cache: make(map[uintptr][]profile.Frame)}
}

// trace returns the leaf-first frames for stk. Inlined calls expand into one
// frame each.
func (s *symbolizer) trace(stk []uintptr) []profile.Frame {
	out := make([]profile.Frame, 0, len(stk))
	for _, pc := range stk {
		out = append(out, s.frames(pc)...)
	}
	return out
}

func (s *symbolizer) frames(pc uintptr) []profile.Frame {
	if fs, ok := s.cache[pc]; ok {
		return fs
	}

	var fs []profile.Frame
	iter := runtime.CallersFrames([]uintptr{pc})
	for {
		frame, more := iter.Next()
		if frame.PC != 0 || frame.Function != "" {
			fs = append(fs, toFrame(frame, pc))
		}
		if !more {
			break
		}
	}
	if len(fs) == 0 {
		fs = []profile.Frame{{FunctionName: unknownFunction(pc)}}
	}

	s.cache[pc] = fs
	return fs
}

func toFrame(frame runtime.Frame, pc uintptr) profile.Frame {
	f := profile.Frame{
		FunctionName: frame.Function,
		FileName:     frame.File,
		CallLine:     int64(frame.Line),
	}
	if f.FunctionName == "" {
		f.FunctionName = unknownFunction(pc)
	}
	// Inlined frames carry no *Func; their defining line stays unknown.
	if frame.Func != nil {
		_, line := frame.Func.FileLine(frame.Entry)
		f.DefiningLine = int64(line)
	}
	return f
}

func unknownFunction(pc uintptr) string {
	return fmt.Sprintf("0x%x", pc)
}

// trimRuntime drops the leading runtime frames of a heap stack so that
// allocations are attributed to their caller. A stack made only of runtime
// frames is returned whole.
func trimRuntime(stk []uintptr) []uintptr {
	for i, pc := range stk {
		if f := runtime.FuncForPC(pc); f != nil && strings.HasPrefix(f.Name(), "runtime.") {
			continue
		}
		return stk[i:]
	}
	return stk
}
