package rq

import (
	"context"
	"sync"
	"sync/atomic"
)

// Lazy memoizes construction of a queue that should exist at most once, for
// example one per native context. The queue is built on the first Get and
// shared by every later caller.
//
//	var glQueue = rq.NewLazy(func() (*rq.Queue, error) {
//	    return rq.New(newGLExecutor())
//	})
//
//	q, err := glQueue.Get()
type Lazy struct {
	newQueue func() (*Queue, error)

	once sync.Once
	q    atomic.Pointer[Queue]
	err  error
}

// NewLazy returns a Lazy that builds its queue with newQueue.
func NewLazy(newQueue func() (*Queue, error)) *Lazy {
	return &Lazy{newQueue: newQueue}
}

// Get returns the queue, constructing it on first use. A construction error
// is returned to every caller; construction is not retried.
func (l *Lazy) Get() (*Queue, error) {
	l.once.Do(func() {
		q, err := l.newQueue()
		if err != nil {
			l.err = err
			return
		}
		l.q.Store(q)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.q.Load(), nil
}

// Loaded returns the queue if it has already been constructed, without
// constructing it.
func (l *Lazy) Loaded() (*Queue, bool) {
	q := l.q.Load()
	return q, q != nil
}

// Sync flushes the queue synchronously if it has been constructed and does
// nothing otherwise, so callers can request a pipeline sync without pulling
// the backend up.
func (l *Lazy) Sync(ctx context.Context) error {
	q, ok := l.Loaded()
	if !ok {
		return nil
	}
	return q.Sync(ctx)
}
