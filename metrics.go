package rq

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Drain triggers, used as the "trigger" label of Metrics.Drains.
const (
	TriggerSync          = "sync"          // a synchronous Flush or FlushAndRun
	TriggerRequested     = "requested"     // a fire-and-forget Flush
	TriggerOpportunistic = "opportunistic" // the idle-tick heuristic
	TriggerClose         = "close"         // the final drain in Close
)

// Metrics holds the Prometheus collectors a queue reports into.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Drains         *prometheus.CounterVec
	BytesDrained   prometheus.Counter
	Errors         *prometheus.CounterVec
	DrainDuration  prometheus.Histogram
	BufferCapacity prometheus.Gauge
}

// NewMetrics creates queue metrics under the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Drains: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "drains_total",
				Help:      "Number of buffer drains by trigger",
			},
			[]string{"trigger"},
		),
		BytesDrained: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "drained_bytes_total",
				Help:      "Bytes handed to the executor",
			},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "drain_errors_total",
				Help:      "Executor failures by class (fatal=returned to the waiting synchronous flush, transient=dropped)",
			},
			[]string{"class"},
		),
		DrainDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "drain_duration_seconds",
				Help:      "Time spent in the executor and follow-up task per drain",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		BufferCapacity: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "buffer_capacity_bytes",
				Help:      "Allocated command buffer size at the last drain",
			},
		),
	}
}

// Collectors returns every collector in m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Drains, m.BytesDrained, m.Errors, m.DrainDuration, m.BufferCapacity}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("rq: register metrics: %w", err)
		}
	}
	return nil
}

func (m *Metrics) observeDrain(trigger string, n, capacity int, d time.Duration) {
	if m == nil {
		return
	}
	m.Drains.WithLabelValues(trigger).Inc()
	m.BytesDrained.Add(float64(n))
	m.DrainDuration.Observe(d.Seconds())
	m.BufferCapacity.Set(float64(capacity))
}

func (m *Metrics) observeError(fatal bool) {
	if m == nil {
		return
	}
	class := "transient"
	if fatal {
		class = "fatal"
	}
	m.Errors.WithLabelValues(class).Inc()
}
