package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twelveoclock/fastutil-concurrent/pkg/cmap"
	"github.com/twelveoclock/fastutil-concurrent/pkg/codec"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cset"
)

func TestCollectionStore_MapRoundTrip(t *testing.T) {
	store := NewCollectionStore(newTestEngine(t, ""), nil)
	ctx := context.Background()

	m := cmap.NewLong2Object[string](cmap.WithStripes(4))
	for i := int64(-500); i < 500; i++ {
		m.Put(i, "v")
	}
	m.Put(7, "seven")

	n, err := SaveMap(ctx, store, "users", m, codec.Int64(), codec.String())
	require.NoError(t, err)
	assert.Equal(t, 1000, n)

	loaded := cmap.NewLong2Object[string]()
	n, err = LoadMap(ctx, store, "users", loaded, codec.Int64(), codec.String())
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.Equal(t, 1000, loaded.Len())
	assert.Equal(t, "seven", loaded.Get(7))
	assert.Equal(t, "v", loaded.Get(-500))
}

func TestCollectionStore_SaveReplaces(t *testing.T) {
	store := NewCollectionStore(newTestEngine(t, ""), nil)
	ctx := context.Background()

	m := cmap.NewInt2Int()
	for i := int32(0); i < 100; i++ {
		m.Put(i, i)
	}
	_, err := SaveMap(ctx, store, "m", m, codec.Int32(), codec.Int32())
	require.NoError(t, err)

	m.Clear()
	m.Put(1, 1)
	_, err = SaveMap(ctx, store, "m", m, codec.Int32(), codec.Int32())
	require.NoError(t, err)

	count, err := store.Count(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// failingKV fails every WriteBatch while fail is set.
type failingKV struct {
	KVEngine
	fail bool
}

func (f *failingKV) WriteBatch(ctx context.Context, pairs []KV) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.KVEngine.WriteBatch(ctx, pairs)
}

func TestCollectionStore_FailedSaveKeepsPrevious(t *testing.T) {
	kv := &failingKV{KVEngine: newTestEngine(t, "")}
	store := NewCollectionStore(kv, nil)
	ctx := context.Background()

	m := cmap.NewLong2Long()
	for i := int64(0); i < 100; i++ {
		m.Put(i, i*10)
	}
	_, err := SaveMap(ctx, store, "m", m, codec.Int64(), codec.Int64())
	require.NoError(t, err)

	m.Clear()
	m.Put(500, 5)
	kv.fail = true
	_, err = SaveMap(ctx, store, "m", m, codec.Int64(), codec.Int64())
	require.Error(t, err)

	count, err := store.Count(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 100, count)

	loaded := cmap.NewLong2Long()
	_, err = LoadMap(ctx, store, "m", loaded, codec.Int64(), codec.Int64())
	require.NoError(t, err)
	assert.Equal(t, int64(990), loaded.Get(99))
	assert.False(t, loaded.ContainsKey(500))

	kv.fail = false
	n, err := SaveMap(ctx, store, "m", m, codec.Int64(), codec.Int64())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	count, err = store.Count(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollectionStore_NamesAreIsolated(t *testing.T) {
	store := NewCollectionStore(newTestEngine(t, ""), nil)
	ctx := context.Background()

	a := cset.NewLong()
	a.AddAll(1, 2, 3)
	b := cset.NewLong()
	b.AddAll(4)

	// "set" is a prefix of "set2"; the NUL separator keeps them apart.
	_, err := SaveSet(ctx, store, "set", a, codec.Int64())
	require.NoError(t, err)
	_, err = SaveSet(ctx, store, "set2", b, codec.Int64())
	require.NoError(t, err)

	got := cset.NewLong()
	n, err := LoadSet(ctx, store, "set", got, codec.Int64())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, got.ContainsAll(1, 2, 3))
	assert.False(t, got.Contains(4))

	require.NoError(t, store.DeleteCollection(ctx, "set"))
	count, err := store.Count(ctx, "set")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = store.Count(ctx, "set2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollectionStore_InvalidName(t *testing.T) {
	store := NewCollectionStore(newTestEngine(t, ""), nil)
	ctx := context.Background()

	for _, name := range []string{"", "bad\x00name"} {
		_, err := SaveSet(ctx, store, name, cset.NewInt(), codec.Int32())
		assert.True(t, errors.Is(err, ErrInvalidName), "name %q: %v", name, err)
	}
}

func TestCollectionStore_DecodeError(t *testing.T) {
	engine := newTestEngine(t, "")
	store := NewCollectionStore(engine, nil)
	ctx := context.Background()

	// A truncated varint key.
	require.NoError(t, engine.Set(ctx, []byte("broken\x00\x80"), nil))

	_, err := LoadSet(ctx, store, "broken", cset.NewLong(), codec.Int64())
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrTruncated)
}
