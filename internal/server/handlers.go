package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/coral-mesh/pprofd/internal/sampling"
	"github.com/coral-mesh/pprofd/pkg/profile"
)

func (s *Server) handleHeap(w http.ResponseWriter, r *http.Request) {
	in, err := s.heap.Snapshot(r.Context(), sampling.HeapOptions{GC: queryBool(r, "gc")})
	s.writeProfile(w, r, in, err)
}

// handleGoroutine serves both /thread and /goroutine.
func (s *Server) handleGoroutine(w http.ResponseWriter, r *http.Request) {
	if queryBool(r, "debug") {
		setTextHeaders(w)
		if err := s.goroutines.Dump(w); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write goroutine dump")
		}
		return
	}

	in, err := s.goroutines.Snapshot(r.Context())
	s.writeProfile(w, r, in, err)
}

func (s *Server) handleWall(w http.ResponseWriter, r *http.Request) {
	d, err := s.parseSeconds(r, s.cfg.WallDefaultDuration)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	in, err := s.wall.Sample(r.Context(), d)
	s.writeProfile(w, r, in, err)
}

// handleCPU streams a runtime CPU profile. The signal-based CPU sampler is
// only reachable through runtime/pprof, which encodes its own output.
func (s *Server) handleCPU(w http.ResponseWriter, r *http.Request) {
	d, err := s.parseSeconds(r, s.cfg.CPUDefaultDuration)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.cpu.TryLock() {
		http.Error(w, "a CPU profile is already in progress", http.StatusConflict)
		return
	}
	defer s.cpu.Unlock()

	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		http.Error(w, fmt.Sprintf("could not enable CPU profiling: %v", err), http.StatusConflict)
		return
	}

	timer := time.NewTimer(d)
	select {
	case <-timer.C:
	case <-r.Context().Done():
		timer.Stop()
	}
	pprof.StopCPUProfile()

	writeProfileBytes(w, buf.Bytes())
}

func (s *Server) handleCmdline(w http.ResponseWriter, r *http.Request) {
	args := os.Args
	if proc, err := process.NewProcessWithContext(r.Context(), int32(os.Getpid())); err == nil {
		if cmdline, err := proc.CmdlineSliceWithContext(r.Context()); err == nil && len(cmdline) > 0 {
			args = cmdline
		}
	}

	setTextHeaders(w)
	_, _ = fmt.Fprint(w, strings.Join(args, "\x00"))
}

// writeProfile encodes in and writes it, or maps err to a status code.
func (s *Server) writeProfile(w http.ResponseWriter, r *http.Request, in profile.Input, err error) {
	if err == nil {
		var data []byte
		data, err = profile.Encode(in)
		if err == nil {
			writeProfileBytes(w, data)
			return
		}
	}

	status := errorStatus(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Failed to build profile")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("Profile request rejected")
	}
	http.Error(w, err.Error(), status)
}

// errorStatus maps sampling and encoding failures to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, profile.ErrUnavailableSource):
		return http.StatusPreconditionFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		// Invalid input here means a sampling source produced bad data, and
		// an internal consistency failure is an encoder defect.
		return http.StatusInternalServerError
	}
}

func writeProfileBytes(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="profile"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func setTextHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
}

// parseSeconds reads ?seconds=N, falling back to def.
func (s *Server) parseSeconds(r *http.Request, def time.Duration) (time.Duration, error) {
	v := r.URL.Query().Get("seconds")
	if v == "" {
		if def > s.cfg.MaxDuration {
			return s.cfg.MaxDuration, nil
		}
		return def, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid seconds %q: must be a positive integer", v)
	}
	// Compare in seconds so huge values cannot overflow the multiplication.
	if n > int64(s.cfg.MaxDuration/time.Second) {
		return 0, fmt.Errorf("seconds %d exceeds the maximum of %s", n, s.cfg.MaxDuration)
	}
	return time.Duration(n) * time.Second, nil
}

// queryBool treats "1", "true" and any positive integer as set.
func queryBool(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	n, err := strconv.Atoi(v)
	return err == nil && n > 0
}
