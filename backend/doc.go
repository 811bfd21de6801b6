// Package backend is the registry of command-buffer executors.
//
// Executors register themselves by name from init(), in the style of
// database/sql drivers, and are created with NewExecutor:
//
//	import _ "github.com/gogpu/rq/backend/software"
//
//	exec, err := backend.NewExecutor("software")
//	q, err := rq.New(exec)
//
// # Available Executors
//
//   - software: rasterizes into an image.RGBA (backend/software)
//   - trace: records decoded commands, for tests and diagnostics (backend/trace)
//
// # Failures
//
// An executor returns a plain error for failures the queue may log and
// drop, and wraps the error with Fatal for failures that must reach the
// synchronous flush waiting on the drain.
package backend
