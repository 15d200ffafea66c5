package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkloadMetrics counts benchmark operations and their latency.
type WorkloadMetrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewWorkloadMetrics registers the workload metrics with reg.
func NewWorkloadMetrics(reg prometheus.Registerer) *WorkloadMetrics {
	m := &WorkloadMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "workload",
			Name:      "operations_total",
			Help:      "Operations executed by the workload runner.",
		}, []string{"collection", "op"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "workload",
			Name:      "operation_duration_seconds",
			Help:      "Latency of single collection operations.",
			Buckets:   prometheus.ExponentialBuckets(50e-9, 4, 10),
		}, []string{"collection", "op"}),
	}
	reg.MustRegister(m.ops, m.latency)
	return m
}

// Observe records one operation.
func (m *WorkloadMetrics) Observe(collection, op string, d time.Duration) {
	m.ops.WithLabelValues(collection, op).Inc()
	m.latency.WithLabelValues(collection, op).Observe(d.Seconds())
}
