// Package workload drives a concurrent mix of reads, puts and removes
// against one collection and reports the achieved throughput.
//
// Workers draw keys uniformly from a fixed key space. A run stops when the
// operation budget is used up, the duration elapses, or the context is
// canceled, whichever comes first. An optional token bucket caps the total
// rate across workers.
//
// Besides the striped collections, the baselines "mutex-map" (a built-in
// map behind one RWMutex) and "sync-map" can be driven for comparison.
package workload
