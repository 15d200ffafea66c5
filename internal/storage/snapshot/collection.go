package snapshot

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/twelveoclock/fastutil-concurrent/pkg/cmap"
	"github.com/twelveoclock/fastutil-concurrent/pkg/codec"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cset"
)

// CreateMap writes a snapshot of src. The entries are copied stripe by
// stripe, so concurrent writers may be partially reflected.
func CreateMap[K, V any](m *Manager, name string, src *cmap.Map[K, V], kc codec.Codec[K], vc codec.Codec[V]) (*Info, error) {
	entries := src.Entries()

	var body, rec []byte
	for _, e := range entries {
		rec = vc.Append(kc.Append(rec[:0], e.Key), e.Value)
		body = protowire.AppendBytes(body, rec)
	}

	hdr := &header{
		Kind:         KindMap,
		Collection:   name,
		Count:        uint64(len(entries)),
		DefaultValue: vc.Append(nil, src.DefaultReturnValue()),
	}
	return m.write(hdr, body)
}

// CreateSet writes a snapshot of src.
func CreateSet[K any](m *Manager, name string, src *cset.Set[K], kc codec.Codec[K]) (*Info, error) {
	elems := src.ToSlice()

	var body, rec []byte
	for _, e := range elems {
		rec = kc.Append(rec[:0], e)
		body = protowire.AppendBytes(body, rec)
	}

	hdr := &header{
		Kind:       KindSet,
		Collection: name,
		Count:      uint64(len(elems)),
	}
	return m.write(hdr, body)
}

// records calls fn with every record of body.
func records(body []byte, count uint64, fn func(rec []byte) error) error {
	var n uint64
	for len(body) > 0 {
		rec, l := protowire.ConsumeBytes(body)
		if l < 0 {
			return fmt.Errorf("snapshot: record %d: %w", n, protowire.ParseError(l))
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("snapshot: record %d: %w", n, err)
		}
		body = body[l:]
		n++
	}
	if n != count {
		return fmt.Errorf("snapshot: %d records, header says %d", n, count)
	}
	return nil
}

// RestoreMap puts the entries of snapshot id into dst and applies its default
// return value. An empty id selects the newest valid map snapshot.
func RestoreMap[K, V any](m *Manager, id string, dst *cmap.Map[K, V], kc codec.Codec[K], vc codec.Codec[V]) (*Info, error) {
	hdr, body, info, err := m.load(id, KindMap)
	if err != nil {
		return nil, err
	}

	type entry struct {
		k K
		v V
	}
	decoded := make([]entry, 0, min(hdr.Count, uint64(len(body))))
	err = records(body, hdr.Count, func(rec []byte) error {
		k, n, err := kc.Decode(rec)
		if err != nil {
			return fmt.Errorf("decode key: %w", err)
		}
		v, err := codec.Unmarshal(vc, rec[n:])
		if err != nil {
			return fmt.Errorf("decode value: %w", err)
		}
		decoded = append(decoded, entry{k, v})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(hdr.DefaultValue) > 0 {
		def, err := codec.Unmarshal(vc, hdr.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("snapshot: decode default value: %w", err)
		}
		dst.SetDefaultReturnValue(def)
	}
	for _, e := range decoded {
		dst.Put(e.k, e.v)
	}
	return info, nil
}

// RestoreSet adds the elements of snapshot id to dst. An empty id selects the
// newest valid set snapshot.
func RestoreSet[K any](m *Manager, id string, dst *cset.Set[K], kc codec.Codec[K]) (*Info, error) {
	hdr, body, info, err := m.load(id, KindSet)
	if err != nil {
		return nil, err
	}

	decoded := make([]K, 0, min(hdr.Count, uint64(len(body))))
	err = records(body, hdr.Count, func(rec []byte) error {
		k, err := codec.Unmarshal(kc, rec)
		if err != nil {
			return fmt.Errorf("decode element: %w", err)
		}
		decoded = append(decoded, k)
		return nil
	})
	if err != nil {
		return nil, err
	}

	dst.AddAll(decoded...)
	return info, nil
}
