package rq

import "context"

// Executor is the single-threaded sink that performs the work encoded in a
// queue buffer. A queue calls Execute only from its flusher goroutine, never
// concurrently with itself, so implementations need no locking of their own
// for state touched solely by Execute.
//
// buf aliases the queue buffer and must not be retained after Execute
// returns. ctx satisfies IsFlusher.
//
// A returned error for which IsFatal reports true is delivered to the
// synchronous flush waiting on this drain, if any. Any other error is logged
// and dropped.
type Executor interface {
	Execute(ctx context.Context, buf []byte) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, buf []byte) error

// Execute calls f(ctx, buf).
func (f ExecutorFunc) Execute(ctx context.Context, buf []byte) error {
	return f(ctx, buf)
}

// Task is a follow-up action run by the flusher right after a drain, before
// any other producer can encode into the queue. Errors are classified like
// executor errors.
type Task func(ctx context.Context) error

// flusherKey is the context key carrying the flusher that owns a context.
type flusherKey struct{}

// IsFlusher reports whether ctx was handed out by a queue's flusher, that is,
// whether the caller is running inside an Executor or a Task. Code that may
// run in either place checks it before requesting a synchronous flush.
func IsFlusher(ctx context.Context) bool {
	_, ok := ctx.Value(flusherKey{}).(*flusher)
	return ok
}

func flusherFrom(ctx context.Context) *flusher {
	f, _ := ctx.Value(flusherKey{}).(*flusher)
	return f
}
