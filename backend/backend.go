package backend

import (
	"context"
	"errors"
)

// ErrUnknownExecutor is returned by NewExecutor for a name nobody registered.
var ErrUnknownExecutor = errors.New("backend: unknown executor")

// Executor consumes an encoded command buffer. It has the same method set as
// rq.Executor, so every backend can be passed to rq.New directly without this
// package importing rq.
type Executor interface {
	// Execute runs the records in buf. It is called from a single
	// goroutine at a time and must not retain buf.
	Execute(ctx context.Context, buf []byte) error
}

// FatalError marks an executor failure as fatal: the queue returns it from
// the synchronous flush waiting on the failed drain instead of only logging
// it.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "backend: fatal: " + e.Err.Error() }

// Unwrap returns the underlying error.
func (e *FatalError) Unwrap() error { return e.Err }

// Fatal reports true.
func (e *FatalError) Fatal() bool { return true }

// Fatal wraps err in a *FatalError. It returns nil for a nil err.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}
