package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twelveoclock/fastutil-concurrent/pkg/cmap"
	"github.com/twelveoclock/fastutil-concurrent/pkg/codec"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cset"
)

// ErrInvalidName is returned for collection names that are empty or contain
// a NUL byte.
var ErrInvalidName = errors.New("invalid collection name")

// batchSize bounds the number of pairs buffered before a write batch.
const batchSize = 4096

// CollectionStore saves and loads whole collections through a KVEngine.
type CollectionStore struct {
	kv     KVEngine
	logger *slog.Logger
}

// NewCollectionStore wraps kv.
func NewCollectionStore(kv KVEngine, logger *slog.Logger) *CollectionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionStore{kv: kv, logger: logger.With("component", "collection_store")}
}

// prefix returns "<name>\x00".
func prefix(name string) ([]byte, error) {
	if name == "" || bytes.IndexByte([]byte(name), 0) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return append([]byte(name), 0), nil
}

// DeleteCollection removes every stored entry of name.
func (s *CollectionStore) DeleteCollection(ctx context.Context, name string) error {
	p, err := prefix(name)
	if err != nil {
		return err
	}
	return s.kv.DropPrefix(ctx, p)
}

// Count returns the number of stored entries of name.
func (s *CollectionStore) Count(ctx context.Context, name string) (int, error) {
	p, err := prefix(name)
	if err != nil {
		return 0, err
	}
	n := 0
	err = s.kv.Scan(ctx, p, func(_, _ []byte) bool {
		n++
		return true
	})
	return n, err
}

// save replaces the stored contents of name with the pairs produced by each.
// New pairs are written before stale keys are deleted, so a failed save
// leaves the previous contents readable.
func (s *CollectionStore) save(ctx context.Context, name string, each func(emit func(k, v []byte))) (int, error) {
	p, err := prefix(name)
	if err != nil {
		return 0, err
	}

	var (
		batch   []KV
		werr    error
		current = make(map[string]struct{})
	)
	flush := func() {
		if werr == nil && len(batch) > 0 {
			werr = s.kv.WriteBatch(ctx, batch)
		}
		batch = batch[:0]
	}
	each(func(k, v []byte) {
		key := make([]byte, 0, len(p)+len(k))
		key = append(append(key, p...), k...)
		current[string(key)] = struct{}{}
		batch = append(batch, KV{Key: key, Value: v})
		if len(batch) >= batchSize {
			flush()
		}
	})
	flush()
	if werr != nil {
		return 0, fmt.Errorf("save collection %q: %w", name, werr)
	}

	var stale [][]byte
	err = s.kv.Scan(ctx, p, func(key, _ []byte) bool {
		if _, ok := current[string(key)]; !ok {
			stale = append(stale, bytes.Clone(key))
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("save collection %q: %w", name, err)
	}
	for _, key := range stale {
		if err := s.kv.Delete(ctx, key); err != nil {
			return 0, fmt.Errorf("save collection %q: remove stale key: %w", name, err)
		}
	}

	s.logger.Info("collection saved", "collection", name, "entries", len(current), "removed", len(stale))
	return len(current), nil
}

// load calls fn for every stored pair of name with the prefix stripped.
func (s *CollectionStore) load(ctx context.Context, name string, fn func(k, v []byte) error) (int, error) {
	p, err := prefix(name)
	if err != nil {
		return 0, err
	}

	n := 0
	var ferr error
	err = s.kv.Scan(ctx, p, func(key, value []byte) bool {
		if ferr = fn(key[len(p):], value); ferr != nil {
			return false
		}
		n++
		return true
	})
	if err == nil {
		err = ferr
	}
	if err != nil {
		return n, fmt.Errorf("load collection %q: %w", name, err)
	}

	s.logger.Info("collection loaded", "collection", name, "entries", n)
	return n, nil
}

// SaveMap replaces the stored collection name with the entries of m.
// Entries are copied out of m stripe by stripe first.
func SaveMap[K, V any](ctx context.Context, s *CollectionStore, name string, m *cmap.Map[K, V], kc codec.Codec[K], vc codec.Codec[V]) (int, error) {
	entries := m.Entries()
	return s.save(ctx, name, func(emit func(k, v []byte)) {
		for _, e := range entries {
			emit(kc.Append(nil, e.Key), vc.Append(nil, e.Value))
		}
	})
}

// LoadMap puts every stored entry of name into m and returns how many were read.
func LoadMap[K, V any](ctx context.Context, s *CollectionStore, name string, m *cmap.Map[K, V], kc codec.Codec[K], vc codec.Codec[V]) (int, error) {
	return s.load(ctx, name, func(kb, vb []byte) error {
		k, err := codec.Unmarshal(kc, kb)
		if err != nil {
			return fmt.Errorf("decode key: %w", err)
		}
		v, err := codec.Unmarshal(vc, vb)
		if err != nil {
			return fmt.Errorf("decode value: %w", err)
		}
		m.Put(k, v)
		return nil
	})
}

// SaveSet replaces the stored collection name with the elements of set.
func SaveSet[K any](ctx context.Context, s *CollectionStore, name string, set *cset.Set[K], kc codec.Codec[K]) (int, error) {
	elems := set.ToSlice()
	return s.save(ctx, name, func(emit func(k, v []byte)) {
		for _, e := range elems {
			emit(kc.Append(nil, e), nil)
		}
	})
}

// LoadSet adds every stored element of name to set.
func LoadSet[K any](ctx context.Context, s *CollectionStore, name string, set *cset.Set[K], kc codec.Codec[K]) (int, error) {
	return s.load(ctx, name, func(kb, _ []byte) error {
		k, err := codec.Unmarshal(kc, kb)
		if err != nil {
			return fmt.Errorf("decode element: %w", err)
		}
		set.Add(k)
		return nil
	})
}
