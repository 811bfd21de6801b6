package rq

import (
	"errors"
	"fmt"
)

// Queue errors.
var (
	// ErrFatal marks an executor failure that must be reported to the next
	// synchronous flush. Executors wrap it, or return an error with a
	// Fatal() bool method reporting true.
	ErrFatal = errors.New("rq: fatal executor failure")

	// ErrClosed is returned by flush requests made after Close.
	ErrClosed = errors.New("rq: queue closed")

	// ErrFlusherDeadlock is returned when a synchronous flush is requested
	// from the flusher goroutine itself, which would wait on its own drain.
	ErrFlusherDeadlock = errors.New("rq: synchronous flush requested from the flusher")

	// ErrNotLocked is returned by a synchronous flush issued without the
	// queue lock held.
	ErrNotLocked = errors.New("rq: synchronous flush requires the queue lock")

	// ErrNilExecutor is returned by New when no executor is given.
	ErrNilExecutor = errors.New("rq: executor is nil")

	// ErrInvalidConfig is returned for out-of-range configuration values.
	ErrInvalidConfig = errors.New("rq: invalid configuration")
)

// PanicError is the error recorded when an executor or task panics on the
// flusher goroutine. It is always fatal.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("rq: panic during drain: %v", e.Value)
}

// Fatal reports true.
func (e *PanicError) Fatal() bool { return true }

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsFatal reports whether err is a fatal executor failure: it wraps ErrFatal
// or some error in its chain has a Fatal() bool method that reports true.
// Everything else is treated as transient and swallowed by the flusher.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrFatal) {
		return true
	}
	var f interface{ Fatal() bool }
	return errors.As(err, &f) && f.Fatal()
}
