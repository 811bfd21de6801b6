// Package rq provides a render command queue that lets many goroutines
// issue drawing operations against a backend that must only ever be used
// from one goroutine.
//
// # Overview
//
// A Queue owns a growable command buffer and a lock. Producers take the
// lock, encode records with the op package, and release it. A dedicated
// flusher goroutine, started by New, is the only caller of the Executor
// that consumes the buffer.
//
// Producers pick per call how long they wait:
//
//   - Fire-and-forget: encode and unlock. The flusher drains the buffer once
//     it has been idle for the configured latency (100ms by default), or
//     at its next chance after Flush(ctx, false).
//   - Synchronous: keep the lock and call Flush(ctx, true) or FlushAndRun.
//     The call returns after every record encoded so far has gone through
//     the executor, and reports fatal executor errors.
//
// # Quick Start
//
//	q, err := rq.New(exec)
//	if err != nil {
//	    return err
//	}
//	defer q.Close()
//
//	q.Lock()
//	q.Encode(op.SetColor{R: 255, A: 255}, op.FillRect{X: 10, Y: 10, W: 100, H: 50})
//	err = q.Flush(ctx, true)
//	q.Unlock()
//
// # Errors
//
// Executor failures never stop the flusher. A failure for which IsFatal
// reports true (wrapping ErrFatal, or any panic) is returned by the
// synchronous flush whose drain hit it. Every drain starts by discarding the
// previous drain's error, so a fatal failure in a fire-and-forget drain is
// logged at error level and is not seen by later flushes. Other failures are
// logged at warn level and dropped.
//
// A synchronous flush from inside an Executor or Task would wait for itself;
// it fails with ErrFlusherDeadlock. Use IsFlusher to check. A fire-and-forget
// flush from there schedules one more drain after the current one.
//
// # Backends
//
// Executors are registered by name in the backend package: backend/software
// draws into an image.RGBA, backend/trace records decoded commands.
package rq
