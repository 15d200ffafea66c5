// Package codec encodes collection keys and values as compact protobuf wire
// primitives. Snapshots and the badger-backed store use it to turn typed
// entries into bytes without reflection.
package codec

import (
	"errors"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrTruncated is returned when a buffer ends in the middle of a value.
var ErrTruncated = errors.New("codec: truncated input")

// Codec converts values of type T to and from bytes.
type Codec[T any] interface {
	// Append appends the encoding of v to dst.
	Append(dst []byte, v T) []byte
	// Decode decodes one value from the start of b and returns it along
	// with the number of bytes consumed.
	Decode(b []byte) (T, int, error)
}

// wireError converts a negative protowire length into an error.
func wireError(n int) error {
	err := protowire.ParseError(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return fmt.Errorf("codec: %w", err)
}

type int32Codec struct{}

func (int32Codec) Append(dst []byte, v int32) []byte {
	return protowire.AppendVarint(dst, protowire.EncodeZigZag(int64(v)))
}

func (int32Codec) Decode(b []byte) (int32, int, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, wireError(n)
	}
	v := protowire.DecodeZigZag(u)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, 0, fmt.Errorf("codec: value %d overflows int32", v)
	}
	return int32(v), n, nil
}

type int64Codec struct{}

func (int64Codec) Append(dst []byte, v int64) []byte {
	return protowire.AppendVarint(dst, protowire.EncodeZigZag(v))
}

func (int64Codec) Decode(b []byte) (int64, int, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, wireError(n)
	}
	return protowire.DecodeZigZag(u), n, nil
}

type uint32Codec struct{}

func (uint32Codec) Append(dst []byte, v uint32) []byte {
	return protowire.AppendVarint(dst, uint64(v))
}

func (uint32Codec) Decode(b []byte) (uint32, int, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, wireError(n)
	}
	if u > math.MaxUint32 {
		return 0, 0, fmt.Errorf("codec: value %d overflows uint32", u)
	}
	return uint32(u), n, nil
}

type uint64Codec struct{}

func (uint64Codec) Append(dst []byte, v uint64) []byte {
	return protowire.AppendVarint(dst, v)
}

func (uint64Codec) Decode(b []byte) (uint64, int, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, wireError(n)
	}
	return u, n, nil
}

type float64Codec struct{}

func (float64Codec) Append(dst []byte, v float64) []byte {
	return protowire.AppendFixed64(dst, math.Float64bits(v))
}

func (float64Codec) Decode(b []byte) (float64, int, error) {
	u, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, wireError(n)
	}
	return math.Float64frombits(u), n, nil
}

type boolCodec struct{}

func (boolCodec) Append(dst []byte, v bool) []byte {
	return protowire.AppendVarint(dst, protowire.EncodeBool(v))
}

func (boolCodec) Decode(b []byte) (bool, int, error) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return false, 0, wireError(n)
	}
	return protowire.DecodeBool(u), n, nil
}

type stringCodec struct{}

func (stringCodec) Append(dst []byte, v string) []byte {
	return protowire.AppendString(dst, v)
}

func (stringCodec) Decode(b []byte) (string, int, error) {
	s, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, wireError(n)
	}
	return s, n, nil
}

type bytesCodec struct{}

func (bytesCodec) Append(dst []byte, v []byte) []byte {
	return protowire.AppendBytes(dst, v)
}

func (bytesCodec) Decode(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, wireError(n)
	}
	return append([]byte(nil), v...), n, nil
}

// Int32 encodes int32 as a zig-zag varint.
func Int32() Codec[int32] { return int32Codec{} }

// Int64 encodes int64 as a zig-zag varint.
func Int64() Codec[int64] { return int64Codec{} }

// Uint32 encodes uint32 as a varint.
func Uint32() Codec[uint32] { return uint32Codec{} }

// Uint64 encodes uint64 as a varint.
func Uint64() Codec[uint64] { return uint64Codec{} }

// Float64 encodes float64 as 8 little-endian bytes.
func Float64() Codec[float64] { return float64Codec{} }

// Bool encodes bool as a one-byte varint.
func Bool() Codec[bool] { return boolCodec{} }

// String encodes a string with a varint length prefix.
func String() Codec[string] { return stringCodec{} }

// Bytes encodes a byte slice with a varint length prefix. Decode copies.
func Bytes() Codec[[]byte] { return bytesCodec{} }

// Struct encodes nothing; it serves set elements' empty values.
func Struct() Codec[struct{}] { return structCodec{} }

type structCodec struct{}

func (structCodec) Append(dst []byte, _ struct{}) []byte { return dst }

func (structCodec) Decode([]byte) (struct{}, int, error) { return struct{}{}, 0, nil }

// Marshal encodes v into a fresh slice.
func Marshal[T any](c Codec[T], v T) []byte {
	return c.Append(nil, v)
}

// Unmarshal decodes b, which must hold exactly one value.
func Unmarshal[T any](c Codec[T], b []byte) (T, error) {
	v, n, err := c.Decode(b)
	if err != nil {
		return v, err
	}
	if n != len(b) {
		var zero T
		return zero, fmt.Errorf("codec: %d trailing bytes", len(b)-n)
	}
	return v, nil
}
