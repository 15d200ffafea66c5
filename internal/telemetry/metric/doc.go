// Package metric exposes Prometheus metrics for collections and workloads.
//
//   - prometheus.go: registry with runtime collectors, HTTP handler and server
//   - collector.go: per-stripe occupancy of tracked collections
//   - workload.go: operation counters and latency histograms
//
// Metrics are exposed at /metrics in Prometheus text format.
package metric
