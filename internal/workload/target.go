package workload

import (
	"strconv"
	"sync"

	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/metric"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cmap"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cset"
)

// Target is a collection driven by the runner. Keys are drawn from
// [0, Config.Keys) and converted to the collection's key type.
type Target interface {
	// Get reports whether k is present.
	Get(k int64) bool
	Put(k int64)
	Remove(k int64) bool
	Len() int
}

// striped is implemented by targets backed by a striped collection.
type striped interface {
	Target
	metric.StatsSource
	Stripes() int
}

func newTarget(cfg Config) Target {
	opts := []cmap.Option{cmap.WithExpected(cfg.expected())}
	if cfg.Stripes > 0 {
		opts = append(opts, cmap.WithStripes(cfg.Stripes))
	}
	if cfg.LoadFactor != 0 {
		opts = append(opts, cmap.WithLoadFactor(cfg.LoadFactor))
	}

	switch cfg.Collection {
	case Int2Int:
		m := cmap.NewInt2Int(opts...)
		m.SetDefaultReturnValue(-1)
		return int2int{m}
	case Long2Long:
		return long2long{cmap.NewLong2Long(opts...)}
	case Long2Obj:
		return long2object{cmap.NewLong2Object[string](opts...)}
	case LongSet:
		return longSet{cset.NewLong(opts...)}
	case ObjectSet:
		return objectSet{cset.NewString(opts...)}
	case MutexMap:
		return &mutexMap{m: make(map[int64]int64, cfg.expected())}
	case SyncMapRef:
		return &syncMap{}
	}
	panic("workload: unknown collection " + cfg.Collection)
}

type int2int struct{ m *cmap.Int2IntMap }

func (t int2int) Get(k int64) bool { return t.m.Get(int32(k)) != -1 }
func (t int2int) Put(k int64) { t.m.Put(int32(k), int32(k)) }
func (t int2int) Remove(k int64) bool { return t.m.Remove(int32(k)) != -1 }
func (t int2int) Len() int { return t.m.Len() }
func (t int2int) Stripes() int { return t.m.Stripes() }
func (t int2int) Stats() []cmap.StripeStats { return t.m.Stats() }

type long2long struct{ m *cmap.Long2LongMap }

func (t long2long) Get(k int64) bool { return t.m.ContainsKey(k) }
func (t long2long) Put(k int64) { cmap.AddTo(t.m, k, 1) }
func (t long2long) Len() int { return t.m.Len() }
func (t long2long) Stripes() int { return t.m.Stripes() }
func (t long2long) Stats() []cmap.StripeStats { return t.m.Stats() }

func (t long2long) Remove(k int64) bool {
	_, ok := t.m.Delete(k)
	return ok
}

type long2object struct{ m *cmap.Map[int64, string] }

func (t long2object) Put(k int64) { t.m.Put(k, strconv.FormatInt(k, 36)) }
func (t long2object) Len() int { return t.m.Len() }
func (t long2object) Stripes() int { return t.m.Stripes() }
func (t long2object) Stats() []cmap.StripeStats { return t.m.Stats() }

func (t long2object) Get(k int64) bool {
	_, ok := t.m.Lookup(k)
	return ok
}

func (t long2object) Remove(k int64) bool {
	_, ok := t.m.Delete(k)
	return ok
}

type longSet struct{ s *cset.Set[int64] }

func (t longSet) Get(k int64) bool { return t.s.Contains(k) }
func (t longSet) Put(k int64) { t.s.Add(k) }
func (t longSet) Remove(k int64) bool { return t.s.Remove(k) }
func (t longSet) Len() int { return t.s.Len() }
func (t longSet) Stripes() int { return t.s.Stripes() }
func (t longSet) Stats() []cmap.StripeStats { return t.s.Stats() }

type objectSet struct{ s *cset.Set[string] }

func objectKey(k int64) string { return "key-" + strconv.FormatInt(k, 10) }

func (t objectSet) Get(k int64) bool { return t.s.Contains(objectKey(k)) }
func (t objectSet) Put(k int64) { t.s.Add(objectKey(k)) }
func (t objectSet) Remove(k int64) bool { return t.s.Remove(objectKey(k)) }
func (t objectSet) Len() int { return t.s.Len() }
func (t objectSet) Stripes() int { return t.s.Stripes() }
func (t objectSet) Stats() []cmap.StripeStats { return t.s.Stats() }

// mutexMap is a built-in map behind a single RWMutex.
type mutexMap struct {
	mu sync.RWMutex
	m  map[int64]int64
}

func (t *mutexMap) Get(k int64) bool {
	t.mu.RLock()
	_, ok := t.m[k]
	t.mu.RUnlock()
	return ok
}

func (t *mutexMap) Put(k int64) {
	t.mu.Lock()
	t.m[k] = k
	t.mu.Unlock()
}

func (t *mutexMap) Remove(k int64) bool {
	t.mu.Lock()
	_, ok := t.m[k]
	delete(t.m, k)
	t.mu.Unlock()
	return ok
}

func (t *mutexMap) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}

type syncMap struct {
	m sync.Map
}

func (t *syncMap) Get(k int64) bool {
	_, ok := t.m.Load(k)
	return ok
}

func (t *syncMap) Put(k int64) { t.m.Store(k, k) }

func (t *syncMap) Remove(k int64) bool {
	_, ok := t.m.LoadAndDelete(k)
	return ok
}

func (t *syncMap) Len() int {
	n := 0
	t.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
