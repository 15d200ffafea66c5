package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/twelveoclock/fastutil-concurrent/pkg/cmap"
)

// StatsSource is a striped collection; *cmap.Map and *cset.Set satisfy it.
type StatsSource interface {
	Stats() []cmap.StripeStats
}

// Collector reports the per-stripe occupancy of tracked collections.
type Collector struct {
	sources *cmap.Map[string, StatsSource]

	entries  *prometheus.Desc
	capacity *prometheus.Desc
	stripes  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector with no tracked collections.
func NewCollector() *Collector {
	return &Collector{
		sources: cmap.NewString2Object[StatsSource](cmap.WithStripes(1)),
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "collection", "entries"),
			"Entries held by one stripe of a collection.",
			[]string{"collection", "stripe"}, nil,
		),
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "collection", "capacity_slots"),
			"Table slots allocated by one stripe of a collection.",
			[]string{"collection", "stripe"}, nil,
		),
		stripes: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "collection", "stripes"),
			"Number of stripes of a collection.",
			[]string{"collection"}, nil,
		),
	}
}

// Track starts reporting src under name, replacing any previous source.
func (c *Collector) Track(name string, src StatsSource) {
	c.sources.Put(name, src)
}

// Untrack stops reporting name.
func (c *Collector) Untrack(name string) {
	c.sources.Remove(name)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.capacity
	ch <- c.stripes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, src := range c.sources.All() {
		stats := src.Stats()
		ch <- prometheus.MustNewConstMetric(c.stripes, prometheus.GaugeValue, float64(len(stats)), name)
		for _, s := range stats {
			stripe := strconv.Itoa(s.Index)
			ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Count), name, stripe)
			ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), name, stripe)
		}
	}
}
