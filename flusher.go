package rq

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// flusher is the only goroutine that calls the executor.
//
// State machine:
//
//	IDLE            -> (Flush / idle ticks expire)   -> FLUSH_REQUESTED
//	FLUSH_REQUESTED -> (queue lock available)         -> FLUSHING
//	FLUSHING        -> (executor and task return)     -> IDLE
//
// Two locks are involved. The queue lock guards the buffer; mu guards the
// request state below. The order is always queue lock, then mu: synchronous
// requesters hold the queue lock when they take mu, and the flusher only
// ever TryLocks the queue while holding mu.
//
// A drain runs with mu held and with the queue lock held either by the
// synchronous requester being served (lockHeld) or by the flusher itself.
type flusher struct {
	q         *Queue
	exec      Executor
	ctx       context.Context
	tick      time.Duration
	threshold int
	logger    *slog.Logger
	metrics   *Metrics

	mu         sync.Mutex
	drained    *sync.Cond
	needsFlush bool
	lockHeld   bool // a synchronous requester holds the queue lock for us
	task       Task
	lastErr    error
	drains     uint64
	closed     bool

	// rerequest is set by fire-and-forget flushes issued on the flusher
	// goroutine itself, which already holds mu.
	rerequest atomic.Bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newFlusher(q *Queue, exec Executor, o *options) *flusher {
	f := &flusher{
		q:         q,
		exec:      exec,
		tick:      o.tick,
		threshold: o.threshold(),
		logger:    o.logger,
		metrics:   o.metrics,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	f.drained = sync.NewCond(&f.mu)
	f.ctx = context.WithValue(context.Background(), flusherKey{}, f)
	return f
}

func (f *flusher) log() *slog.Logger {
	if f.logger != nil {
		return f.logger
	}
	return Logger()
}

func (f *flusher) signal() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// request records a flush request. A synchronous request waits for the next
// drain to complete; since the requester holds the queue lock, no other
// drain can start before the one serving it.
func (f *flusher) request(sync bool, task Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	f.needsFlush = true
	if !sync {
		f.signal()
		return nil
	}

	f.lockHeld = true
	f.task = task
	seq := f.drains
	f.signal()
	for f.drains == seq {
		f.drained.Wait()
	}

	err := f.lastErr
	f.lastErr = nil
	return err
}

// requestFromFlusher records a fire-and-forget flush issued by an Executor
// or Task. It is served by a drain after the current one.
func (f *flusher) requestFromFlusher() {
	f.rerequest.Store(true)
	f.signal()
}

func (f *flusher) run() {
	defer close(f.done)
	f.log().Info("rq: flusher started", "tick", f.tick, "threshold", f.threshold)

	ticker := time.NewTicker(f.tick)
	defer ticker.Stop()

	idle := 0
	for {
		select {
		case <-f.wake:
		case <-ticker.C:
			idle++
		case <-f.stop:
			f.shutdown()
			f.log().Info("rq: flusher stopped")
			return
		}
		if f.service(idle >= f.threshold) {
			idle = 0
		}
	}
}

// service drains the buffer if a request is pending or the idle budget is
// spent. It reports whether the idle count restarts: after a drain, or when
// the idle check finds nothing buffered. It never blocks on the queue lock:
// when the lock is busy the request stays pending for the next wake or tick.
func (f *flusher) service(idleExpired bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	var trigger string
	owned := false
	switch {
	case f.needsFlush && f.lockHeld:
		trigger = TriggerSync
	case f.needsFlush:
		if !f.q.TryLock() {
			return false
		}
		owned, trigger = true, TriggerRequested
	case idleExpired:
		if !f.q.TryLock() {
			return false
		}
		if f.q.IsEmpty() {
			f.q.Unlock()
			return true
		}
		owned, trigger = true, TriggerOpportunistic
		f.needsFlush = true
	default:
		return false
	}

	f.drainLocked(trigger)
	if owned {
		f.q.Unlock()
	}
	f.completeLocked()
	return true
}

// drainLocked hands the buffer to the executor, clears it, and runs the
// pending task. A fatal error left by an earlier drain is discarded first, so
// lastErr only ever describes the latest drain. Failures never escape: fatal
// ones are held in lastErr, the rest are logged.
func (f *flusher) drainLocked(trigger string) {
	start := time.Now()
	f.lastErr = nil
	n := f.q.Len()
	capacity := f.q.buf.Capacity()

	var err error
	if n > 0 {
		err = f.invoke(func() error {
			return f.exec.Execute(f.ctx, f.q.buf.Bytes())
		})
		f.record(err, "execute", trigger)
	}
	f.q.clear()

	if task := f.task; task != nil {
		f.task = nil
		if !IsFatal(err) {
			f.record(f.invoke(func() error { return task(f.ctx) }), "task", trigger)
		}
	}

	d := time.Since(start)
	f.metrics.observeDrain(trigger, n, capacity, d)
	f.log().Debug("rq: drained", "trigger", trigger, "bytes", n, "duration", d)
}

func (f *flusher) invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}

func (f *flusher) record(err error, stage, trigger string) {
	if err == nil {
		return
	}
	if IsFatal(err) {
		f.lastErr = err
		f.metrics.observeError(true)
		f.log().Error("rq: fatal drain failure", "stage", stage, "trigger", trigger, "err", err)
		return
	}
	f.metrics.observeError(false)
	f.log().Warn("rq: drain failure dropped", "stage", stage, "trigger", trigger, "err", err)
}

func (f *flusher) completeLocked() {
	f.needsFlush = f.rerequest.Swap(false)
	if f.needsFlush {
		f.signal()
	}
	f.lockHeld = false
	f.drains++
	f.drained.Broadcast()
}

// shutdown serves a synchronous request that raced with close, then drains
// what is left. closed is already set, so nobody can be waiting on a drain
// while holding the queue lock by the time it is taken below.
func (f *flusher) shutdown() {
	f.mu.Lock()
	if f.needsFlush && f.lockHeld {
		f.drainLocked(TriggerSync)
		f.completeLocked()
	}
	f.mu.Unlock()

	f.q.Lock()
	f.mu.Lock()
	if f.needsFlush || !f.q.IsEmpty() || f.task != nil {
		f.drainLocked(TriggerClose)
		f.completeLocked()
	}
	f.mu.Unlock()
	f.q.Unlock()
}

func (f *flusher) close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		<-f.done
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	close(f.stop)
	<-f.done

	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.lastErr
	f.lastErr = nil
	return err
}
