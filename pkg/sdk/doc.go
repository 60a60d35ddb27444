// Package sdk embeds pprofd's profiling endpoints in a Go application.
//
// Start runs an HTTP server next to the application that serves heap,
// goroutine, wall-clock and CPU profiles under /debug/pprof in the format
// read by `go tool pprof`:
//
//	import "github.com/coral-mesh/pprofd/pkg/sdk"
//
//	func main() {
//	    prof, err := sdk.Start(sdk.Config{
//	        Addr:           "localhost:6060",
//	        HeapSampleRate: 64 * 1024,
//	        Logger:         logger,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer prof.Close()
//
//	    // Your application code
//	}
//
// To serve the endpoints from an existing server instead, mount Handler:
//
//	mux.Handle("/debug/pprof/", sdk.Handler(sdk.Config{}))
//
// Heap sampling is configured through runtime.MemProfileRate, which is
// process-wide; set it as early as possible so allocations made before Start
// are sampled at the intended rate.
package sdk
