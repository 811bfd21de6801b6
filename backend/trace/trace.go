// Package trace provides an executor that decodes and records every command
// it is given. It backs the queue's tests and the demo's --trace output, and
// can be armed to fail or panic to exercise error propagation.
package trace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/rq/backend"
	"github.com/gogpu/rq/op"
)

// Name is the registry name of this executor.
const Name = "trace"

func init() {
	backend.Register(Name, func() backend.Executor { return New() })
}

// Executor records decoded command batches. Its accessors are safe to call
// from any goroutine while the queue is running.
type Executor struct {
	inFlight atomic.Int32
	overlaps atomic.Int32
	delay    atomic.Int64

	mu      sync.Mutex
	batches [][]op.Command
	armed   []func() error
}

// New creates an empty trace executor.
func New() *Executor {
	return &Executor{}
}

// Execute decodes buf and appends its commands as one batch. A buffer that
// does not decode is a fatal failure.
func (e *Executor) Execute(ctx context.Context, buf []byte) error {
	if e.inFlight.Add(1) > 1 {
		e.overlaps.Add(1)
	}
	defer e.inFlight.Add(-1)

	if d := time.Duration(e.delay.Load()); d > 0 {
		time.Sleep(d)
	}

	var batch []op.Command
	err := op.Decode(buf, func(_ int, c op.Command) error {
		batch = append(batch, c)
		return nil
	})
	if err != nil {
		return backend.Fatal(err)
	}

	e.mu.Lock()
	e.batches = append(e.batches, batch)
	var next func() error
	if len(e.armed) > 0 {
		next = e.armed[0]
		e.armed = e.armed[1:]
	}
	e.mu.Unlock()

	if next != nil {
		return next()
	}
	return nil
}

// FailNext makes a later Execute return err after recording its batch.
// Calls queue up: each arms one Execute.
func (e *Executor) FailNext(err error) {
	e.arm(func() error { return err })
}

// PanicNext makes a later Execute panic with v after recording its batch.
func (e *Executor) PanicNext(v any) {
	e.arm(func() error { panic(v) })
}

func (e *Executor) arm(fn func() error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.armed = append(e.armed, fn)
}

// SetDelay makes every Execute sleep for d before decoding, to widen race
// windows in tests.
func (e *Executor) SetDelay(d time.Duration) {
	e.delay.Store(int64(d))
}

// Batches returns a copy of the recorded batches in execution order.
func (e *Executor) Batches() [][]op.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]op.Command, len(e.batches))
	copy(out, e.batches)
	return out
}

// Commands returns every recorded command in execution order.
func (e *Executor) Commands() []op.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []op.Command
	for _, b := range e.batches {
		out = append(out, b...)
	}
	return out
}

// Overlaps returns how many times Execute was entered while another call was
// still running. A correctly driven executor always reports zero.
func (e *Executor) Overlaps() int {
	return int(e.overlaps.Load())
}

// Reset drops recorded batches and armed failures.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches = nil
	e.armed = nil
}
