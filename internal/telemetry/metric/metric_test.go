package metric

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/twelveoclock/fastutil-concurrent/pkg/cmap"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cset"
)

func TestCollector(t *testing.T) {
	m := cmap.NewInt2Int(cmap.WithStripes(3))
	for i := int32(0); i < 30; i++ {
		m.Put(i, i)
	}
	s := cset.NewLong(cset.WithStripes(2))
	s.Add(1)

	c := NewCollector()
	c.Track("ints", m)
	c.Track("ids", s)

	// stripes gauge per collection plus entries and capacity per stripe.
	if got := testutil.CollectAndCount(c); got != 2+2*3+2*2 {
		t.Errorf("CollectAndCount() = %d, want %d", got, 2+2*3+2*2)
	}

	expected := `
# HELP fastutil_collection_stripes Number of stripes of a collection.
# TYPE fastutil_collection_stripes gauge
fastutil_collection_stripes{collection="ids"} 2
fastutil_collection_stripes{collection="ints"} 3
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "fastutil_collection_stripes"); err != nil {
		t.Error(err)
	}

	c.Untrack("ids")
	if got := testutil.CollectAndCount(c, "fastutil_collection_stripes"); got != 1 {
		t.Errorf("stripes series after Untrack = %d, want 1", got)
	}
}

func TestCollectorEntriesSum(t *testing.T) {
	m := cmap.NewLong2Long(cmap.WithStripes(4))
	for i := int64(0); i < 100; i++ {
		m.Put(i, i)
	}

	c := NewCollector()
	c.Track("longs", m)

	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	var total float64
	for _, f := range families {
		if f.GetName() != "fastutil_collection_entries" {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetGauge().GetValue()
		}
	}
	if total != 100 {
		t.Errorf("sum of entries gauges = %v, want 100", total)
	}
}

func TestWorkloadMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := NewWorkloadMetrics(reg)

	w.Observe("int2int", "get", time.Microsecond)
	w.Observe("int2int", "get", time.Microsecond)
	w.Observe("int2int", "put", time.Microsecond)

	if got := testutil.ToFloat64(w.ops.WithLabelValues("int2int", "get")); got != 2 {
		t.Errorf("get counter = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(w.latency); got != 2 {
		t.Errorf("latency series = %d, want 2", got)
	}
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	c := NewCollector()
	c.Track("empty", cmap.NewInt2Int(cmap.WithStripes(1)))
	reg.MustRegister(c)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, want := range []string{"go_goroutines", `fastutil_collection_stripes{collection="empty"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
