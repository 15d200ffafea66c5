// Package benchmark compares the striped collections with the usual Go
// alternatives: a built-in map behind one RWMutex, sync.Map, and the
// single-goroutine open-addressing tables they are built from.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Vary parallelism:
//
//	go test -bench=Concurrent -cpu=1,4,8,16 ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
