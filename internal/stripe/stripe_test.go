package stripe

import (
	"testing"

	"github.com/twelveoclock/fastutil-concurrent/pkg/hashing"
)

func TestNewClampsCount(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{7, 7},
		{64, 64},
	}

	for _, tt := range tests {
		if got := New(tt.input).Len(); got != tt.expected {
			t.Errorf("New(%d).Len() = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestIndexInRange(t *testing.T) {
	for _, n := range []int{1, 3, 7, 16, 31} {
		l := New(n)
		for i := int64(-500); i < 500; i++ {
			idx := l.Index(hashing.Int64().Hash(i))
			if idx < 0 || idx >= n {
				t.Fatalf("Index for key %d with %d stripes = %d", i, n, idx)
			}
		}
	}
}

func TestIndexDistribution(t *testing.T) {
	const n, keys = 7, 70000
	l := New(n)
	counts := make([]int, n)
	for i := int64(0); i < keys; i++ {
		counts[l.Index(hashing.Int64().Hash(i))]++
	}

	for i, c := range counts {
		if c < keys/n*8/10 || c > keys/n*12/10 {
			t.Errorf("stripe %d got %d keys, want about %d", i, c, keys/n)
		}
	}
}

func TestDefaultCount(t *testing.T) {
	if DefaultCount() < 1 {
		t.Errorf("DefaultCount() = %d, want >= 1", DefaultCount())
	}
}

func TestSplitCapacity(t *testing.T) {
	tests := []struct {
		total, stripes, want int
	}{
		{16, 3, 6},
		{16, 4, 4},
		{0, 4, 0},
		{5, 0, 5},
		{1, 8, 1},
	}

	for _, tt := range tests {
		if got := SplitCapacity(tt.total, tt.stripes); got != tt.want {
			t.Errorf("SplitCapacity(%d, %d) = %d, want %d", tt.total, tt.stripes, got, tt.want)
		}
	}
}
