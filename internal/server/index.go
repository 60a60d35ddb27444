package server

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"text/template"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/coral-mesh/pprofd/internal/constants"
	"github.com/coral-mesh/pprofd/pkg/version"
)

type endpoint struct {
	Path        string
	Description string
}

var endpoints = []endpoint{
	{constants.PathHeap, "Sampled allocations of live and freed memory. ?gc=1 collects garbage first."},
	{constants.PathGoroutine, "Stack traces of all goroutines. ?debug=1 returns a text dump."},
	{constants.PathThread, "Alias for goroutine."},
	{constants.PathWall, "Wall-clock profile of all goroutines over ?seconds=N."},
	{constants.PathProfile, "CPU profile over ?seconds=N."},
	{constants.PathCmdline, "Command line of this process, NUL separated."},
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"bytes": formatBytes,
}).Parse(`{{.Path}}

Profiles:
{{range .Endpoints}}  {{printf "%-24s" .Path}} {{.Description}}
{{end}}
Process:
  pid         {{.PID}}
  goroutines  {{.Goroutines}}
{{- if .Threads}}
  threads     {{.Threads}}
{{- end}}
{{- if .RSS}}
  rss         {{bytes .RSS}}
{{- end}}
  go          {{.GoVersion}}
  pprofd      {{.Version}}
`))

type indexData struct {
	Path       string
	Endpoints  []endpoint
	PID        int
	Goroutines int
	Threads    int32
	RSS        uint64
	GoVersion  string
	Version    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Path:       constants.PathIndex,
		Endpoints:  endpoints,
		PID:        os.Getpid(),
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
		Version:    version.Version,
	}

	// Thread count and RSS are best effort; not every platform reports them.
	logger := zerolog.Ctx(r.Context())
	if proc, err := process.NewProcessWithContext(r.Context(), int32(data.PID)); err == nil {
		if n, err := proc.NumThreadsWithContext(r.Context()); err == nil {
			data.Threads = n
		} else {
			logger.Debug().Err(err).Msg("Thread count unavailable")
		}
		if mem, err := proc.MemoryInfoWithContext(r.Context()); err == nil && mem != nil {
			data.RSS = mem.RSS
		} else {
			logger.Debug().Err(err).Msg("Memory info unavailable")
		}
	}

	setTextHeaders(w)
	if err := indexTemplate.Execute(w, data); err != nil {
		logger.Warn().Err(err).Msg("Failed to render index")
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
