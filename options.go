package rq

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/rq/buffer"
)

// Timing defaults. With these values a buffered record that nobody flushes
// is drained after roughly ten idle ticks.
const (
	// DefaultTickInterval is how long the flusher waits between checks.
	DefaultTickInterval = 10 * time.Millisecond

	// DefaultLatency is the permitted delay before an unrequested flush.
	DefaultLatency = 100 * time.Millisecond
)

// Option configures a Queue during creation.
//
// Example:
//
//	q, err := rq.New(exec,
//	    rq.WithTickInterval(5*time.Millisecond),
//	    rq.WithLatency(50*time.Millisecond),
//	)
type Option func(*options)

// options holds optional configuration for Queue creation.
type options struct {
	tick     time.Duration
	latency  time.Duration
	capacity int
	logger   *slog.Logger
	metrics  *Metrics
}

// defaultOptions returns the default queue options.
func defaultOptions() options {
	return options{
		tick:     DefaultTickInterval,
		latency:  DefaultLatency,
		capacity: buffer.DefaultCapacity,
	}
}

// WithTickInterval sets the flusher's wait interval between idle checks.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		o.tick = d
	}
}

// WithLatency sets the permitted latency for buffered records that no one
// flushes. The flusher promotes an opportunistic drain after
// latency/tick idle ticks.
func WithLatency(d time.Duration) Option {
	return func(o *options) {
		o.latency = d
	}
}

// WithInitialCapacity sets the initial command buffer size in bytes; zero
// selects buffer.DefaultCapacity. The buffer grows by doubling when an
// encode needs more room.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger sets a logger for this queue, overriding the package logger
// installed with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records drain statistics into m. A Metrics value may be shared
// by several queues.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func (o *options) validate() error {
	if o.tick <= 0 {
		return fmt.Errorf("%w: tick interval %v must be positive", ErrInvalidConfig, o.tick)
	}
	if o.latency < o.tick {
		return fmt.Errorf("%w: latency %v is shorter than tick interval %v", ErrInvalidConfig, o.latency, o.tick)
	}
	if o.capacity < 0 {
		return fmt.Errorf("%w: negative initial capacity %d", ErrInvalidConfig, o.capacity)
	}
	return nil
}

// threshold is the number of idle ticks before an opportunistic drain.
func (o *options) threshold() int {
	n := int(o.latency / o.tick)
	if n < 1 {
		n = 1
	}
	return n
}
