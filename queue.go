package rq

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rq/buffer"
	"github.com/gogpu/rq/op"
)

// Queue buffers encoded render commands from many goroutines and hands them
// to a single Executor on a dedicated flusher goroutine.
//
// Producers hold the queue lock while encoding:
//
//	q.Lock()
//	q.Encode(op.SetColor{R: 255, A: 255}, op.FillRect{W: 10, H: 10})
//	q.Unlock() // fire-and-forget: drained by the flusher within the latency budget
//
// or keep holding it and wait for execution:
//
//	q.Lock()
//	q.Encode(op.Dispose{Handle: h})
//	err := q.Flush(ctx, true)
//	q.Unlock()
//
// The lock is not re-entrant. The buffer must only be touched while it is
// held.
type Queue struct {
	mu     sync.Mutex
	locked atomic.Bool

	buf  *buffer.Buffer
	refs []any

	f *flusher
}

// New creates a queue draining into exec and starts its flusher goroutine.
// The flusher runs until Close is called; a queue that is never closed keeps
// it for the life of the process.
func New(exec Executor, opts ...Option) (*Queue, error) {
	if exec == nil {
		return nil, ErrNilExecutor
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	q := &Queue{buf: buffer.New(o.capacity)}
	q.f = newFlusher(q, exec, &o)
	go q.f.run()
	return q, nil
}

// Lock acquires the queue lock.
func (q *Queue) Lock() {
	q.mu.Lock()
	q.locked.Store(true)
}

// Unlock releases the queue lock.
func (q *Queue) Unlock() {
	q.locked.Store(false)
	q.mu.Unlock()
}

// TryLock acquires the queue lock if it is free and reports whether it did.
func (q *Queue) TryLock() bool {
	if !q.mu.TryLock() {
		return false
	}
	q.locked.Store(true)
	return true
}

// Buffer returns the command buffer for direct encoding. It is only valid
// while the queue lock is held.
func (q *Queue) Buffer() *buffer.Buffer { return q.buf }

// Len returns the number of encoded bytes waiting for the next drain.
// The caller must hold the queue lock.
func (q *Queue) Len() int { return q.buf.Position() }

// IsEmpty reports whether nothing is waiting for the next drain.
// The caller must hold the queue lock.
func (q *Queue) IsEmpty() bool { return q.buf.Position() == 0 }

// EnsureCapacity grows the buffer so that n more bytes fit.
// The caller must hold the queue lock.
func (q *Queue) EnsureCapacity(n int) { q.buf.EnsureCapacity(n) }

// EnsureCapacityAndAlignment grows the buffer so that n more bytes fit and
// pads with Nop records until position+offset is 8-byte aligned, so a 64-bit
// field written offset bytes from now lands on an aligned address.
// The caller must hold the queue lock.
func (q *Queue) EnsureCapacityAndAlignment(n, offset int) {
	q.buf.EnsureCapacity(n + 4)
	op.AlignRecord(q.buf, offset, 8)
}

// Encode appends cmds to the buffer in order. The caller must hold the
// queue lock. Encode never flushes.
func (q *Queue) Encode(cmds ...op.Command) {
	for _, c := range cmds {
		op.Encode(q.buf, c)
	}
}

// Retain keeps v reachable until the records encoded so far have been
// drained. Use it for values that encoded records refer to by handle.
// The caller must hold the queue lock.
func (q *Queue) Retain(v any) {
	q.refs = append(q.refs, v)
}

// clear resets the buffer and drops retained values after a drain.
func (q *Queue) clear() {
	q.buf.Clear()
	clear(q.refs)
	q.refs = q.refs[:0]
}

// Flush asks the flusher to drain the buffer.
//
// With sync false it returns at once; the records are executed at the
// flusher's next opportunity, bounded by the configured latency.
//
// Called from an Executor or Task, an asynchronous Flush schedules another
// drain after the current one instead of waiting on the flusher.
//
// With sync true the caller must hold the queue lock, and Flush blocks until
// every record encoded so far has been executed. It returns the fatal error
// of that drain, if any. A fatal error from an earlier asynchronous drain is
// logged and discarded when the next drain starts. The wait cannot be
// cancelled; ctx is only used to detect calls from the flusher itself, which
// fail with ErrFlusherDeadlock.
//
// The lock check is best-effort: a Go mutex has no owner, so ErrNotLocked
// is only returned when no goroutine holds the lock. A caller flushing under
// a lock held by another goroutine drains that goroutine's records.
func (q *Queue) Flush(ctx context.Context, sync bool) error {
	if !sync {
		if q.IsFlusher(ctx) {
			q.f.requestFromFlusher()
			return nil
		}
		return q.f.request(false, nil)
	}
	return q.FlushAndRun(ctx, nil)
}

// FlushAndRun drains the buffer like a synchronous Flush and then runs task
// on the flusher goroutine before any other producer can encode. The caller
// must hold the queue lock. A task is skipped when the drain before it
// failed fatally.
func (q *Queue) FlushAndRun(ctx context.Context, task Task) error {
	if q.IsFlusher(ctx) {
		return ErrFlusherDeadlock
	}
	if !q.locked.Load() {
		return ErrNotLocked
	}
	return q.f.request(true, task)
}

// IsFlusher reports whether ctx belongs to this queue's flusher goroutine.
func (q *Queue) IsFlusher(ctx context.Context) bool {
	return flusherFrom(ctx) == q.f
}

// Sync encodes a Sync barrier and flushes synchronously, taking the lock
// itself.
func (q *Queue) Sync(ctx context.Context) error {
	return q.encodeAndWait(ctx, op.Sync{})
}

// Dispose encodes a Dispose record for handle and waits until the executor
// has processed it, taking the lock itself. Resources must not be reused
// before Dispose returns.
func (q *Queue) Dispose(ctx context.Context, handle uint64) error {
	return q.encodeAndWait(ctx, op.Dispose{Handle: handle})
}

func (q *Queue) encodeAndWait(ctx context.Context, c op.Command) error {
	if q.IsFlusher(ctx) {
		return ErrFlusherDeadlock
	}
	q.Lock()
	defer q.Unlock()
	q.Encode(c)
	return q.Flush(ctx, true)
}

// Close drains whatever is buffered, stops the flusher, and returns the
// fatal error of the last drain if no synchronous flush collected it. Later flush requests fail
// with ErrClosed. Close must not be called with the queue lock held or from
// an Executor or Task.
func (q *Queue) Close() error {
	return q.f.close()
}
