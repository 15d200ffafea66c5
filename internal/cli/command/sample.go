package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/twelveoclock/fastutil-concurrent/pkg/cmap"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cset"
)

// Collections the snapshot and persist commands can generate.
const (
	sampleMap = "long2long"
	sampleSet = "long-set"
)

func collectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Collection type: " + sampleMap + " or " + sampleSet,
			Value: sampleMap,
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Collection name",
			Value: "sample",
		},
		&cli.IntFlag{
			Name:  "stripes",
			Usage: "Stripe count (0 = GOMAXPROCS-1)",
		},
	}
}

func checkCollection(kind string) error {
	if kind != sampleMap && kind != sampleSet {
		return fmt.Errorf("unsupported collection %q (want %s or %s)", kind, sampleMap, sampleSet)
	}
	return nil
}

func sampleOptions(c *cli.Context, expected int) []cmap.Option {
	return []cmap.Option{
		cmap.WithStripes(c.Int("stripes")),
		cmap.WithExpected(expected),
	}
}

// sampleValue is the value generated for key k. Restores check it.
func sampleValue(k int64) int64 {
	return k*k + 1
}

// newSampleMap returns a map holding keys [0, n) with sampleValue values.
// The default return value is -1 so that it round-trips too.
func newSampleMap(n int, opts ...cmap.Option) *cmap.Long2LongMap {
	m := cmap.NewLong2Long(opts...)
	m.SetDefaultReturnValue(-1)
	for k := int64(0); k < int64(n); k++ {
		m.Put(k, sampleValue(k))
	}
	return m
}

// newSampleSet returns a set holding the even numbers below 2n.
func newSampleSet(n int, opts ...cmap.Option) *cset.Set[int64] {
	s := cset.NewLong(opts...)
	for k := int64(0); k < int64(n); k++ {
		s.Add(2 * k)
	}
	return s
}

// mismatches counts map entries that do not hold sampleValue.
func mismatches(m *cmap.Long2LongMap) int {
	bad := 0
	m.Range(func(k, v int64) bool {
		if v != sampleValue(k) {
			bad++
		}
		return true
	})
	return bad
}
