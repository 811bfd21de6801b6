// Package parallel runs producer jobs that encode into a shared queue from
// several goroutines at once.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("parallel: pool closed")

// Job is one unit of producer work. worker identifies the goroutine running
// it, in [0, Workers()).
type Job func(ctx context.Context, worker int) error

// task carries a job to a worker together with the channel its result is
// reported on.
type task struct {
	ctx    context.Context
	fn     Job
	result chan<- error
}

func (t task) run(worker int) {
	if err := t.ctx.Err(); err != nil {
		t.result <- err
		return
	}
	t.result <- t.fn(t.ctx, worker)
}

// Pool is a fixed set of worker goroutines.
//
// Jobs are dealt round-robin onto per-worker channels. A worker whose own
// channel is empty steals from the others before blocking, so one slow job
// does not hold up the jobs queued behind it.
//
// Thread safety: Run may be called concurrently. Close must not race with Run.
type Pool struct {
	workers int
	queues  []chan task
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan task, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan task, queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(id)
			return
		case t := <-own:
			t.run(id)
		default:
			if t, ok := p.steal(id); ok {
				t.run(id)
				continue
			}
			select {
			case <-p.done:
				p.drain(id)
				return
			case t := <-own:
				t.run(id)
			}
		}
	}
}

// drain runs what is left on the worker's own channel at shutdown.
func (p *Pool) drain(id int) {
	for {
		select {
		case t := <-p.queues[id]:
			t.run(id)
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) (task, bool) {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case t := <-p.queues[i]:
			return t, true
		default:
		}
	}
	return task{}, false
}

// Run executes jobs across the workers and waits for all of them. It returns
// the joined errors of the jobs that failed. Jobs that have not started when
// ctx is cancelled report ctx.Err() without running.
func (p *Pool) Run(ctx context.Context, jobs []Job) error {
	if !p.running.Load() {
		return ErrClosed
	}
	if len(jobs) == 0 {
		return nil
	}

	results := make(chan error, len(jobs))
	for i, fn := range jobs {
		t := task{ctx: ctx, fn: fn, result: results}
		select {
		case p.queues[i%p.workers] <- t:
		case <-p.done:
			results <- ErrClosed
		}
	}

	var errs []error
	for range jobs {
		if err := <-results; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops the workers after the queued jobs have run. It is safe to
// call more than once.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// Pending returns an approximate count of queued jobs.
func (p *Pool) Pending() int {
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}
