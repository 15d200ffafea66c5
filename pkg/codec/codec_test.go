package codec

import (
	"errors"
	"math"
	"testing"
)

func TestInt64(t *testing.T) {
	c := Int64()
	tests := []struct {
		v    int64
		size int
	}{
		{0, 1},
		{-1, 1},
		{1, 1},
		{63, 1},
		{-64, 1},
		{64, 2},
		{math.MaxInt64, 10},
		{math.MinInt64, 10},
	}

	for _, tt := range tests {
		b := c.Append(nil, tt.v)
		if len(b) != tt.size {
			t.Errorf("Append(%d) length = %d, want %d", tt.v, len(b), tt.size)
		}
		got, n, err := c.Decode(b)
		if err != nil || got != tt.v || n != len(b) {
			t.Errorf("Decode(Append(%d)) = (%d, %d, %v)", tt.v, got, n, err)
		}
	}
}

func TestInt32Overflow(t *testing.T) {
	b := Int64().Append(nil, math.MaxInt32+1)
	if _, _, err := Int32().Decode(b); err == nil {
		t.Error("Int32().Decode() accepted a value above MaxInt32")
	}
}

func TestUint32Overflow(t *testing.T) {
	b := Uint64().Append(nil, math.MaxUint32+1)
	if _, _, err := Uint32().Decode(b); err == nil {
		t.Error("Uint32().Decode() accepted a value above MaxUint32")
	}
}

func TestSequentialDecode(t *testing.T) {
	var buf []byte
	buf = String().Append(buf, "key")
	buf = Float64().Append(buf, 2.5)
	buf = Bool().Append(buf, true)
	buf = Bytes().Append(buf, []byte{1, 2, 3})

	s, n, err := String().Decode(buf)
	if err != nil || s != "key" {
		t.Fatalf("String().Decode() = (%q, %v)", s, err)
	}
	buf = buf[n:]

	f, n, err := Float64().Decode(buf)
	if err != nil || f != 2.5 || n != 8 {
		t.Fatalf("Float64().Decode() = (%v, %d, %v)", f, n, err)
	}
	buf = buf[n:]

	ok, n, err := Bool().Decode(buf)
	if err != nil || !ok {
		t.Fatalf("Bool().Decode() = (%v, %v)", ok, err)
	}
	buf = buf[n:]

	raw, n, err := Bytes().Decode(buf)
	if err != nil || len(raw) != 3 || raw[2] != 3 {
		t.Fatalf("Bytes().Decode() = (%v, %v)", raw, err)
	}
	if n != len(buf) {
		t.Errorf("Bytes().Decode() consumed %d of %d bytes", n, len(buf))
	}
}

func TestBytesDecodeCopies(t *testing.T) {
	buf := Bytes().Append(nil, []byte("abc"))
	v, _, err := Bytes().Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf[1] = 'X'
	if string(v) != "abc" {
		t.Errorf("decoded bytes alias the input: %q", v)
	}
}

func TestTruncated(t *testing.T) {
	tests := []struct {
		name   string
		decode func([]byte) error
		input  []byte
	}{
		{"varint", func(b []byte) error { _, _, err := Int64().Decode(b); return err }, []byte{0x80}},
		{"empty varint", func(b []byte) error { _, _, err := Uint64().Decode(b); return err }, nil},
		{"fixed64", func(b []byte) error { _, _, err := Float64().Decode(b); return err }, []byte{1, 2, 3}},
		{"string", func(b []byte) error { _, _, err := String().Decode(b); return err }, []byte{5, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.decode(tt.input); !errors.Is(err, ErrTruncated) {
				t.Errorf("Decode() error = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestUnmarshalTrailing(t *testing.T) {
	b := append(Marshal(Int32(), 7), 0)
	if _, err := Unmarshal(Int32(), b); err == nil {
		t.Error("Unmarshal() accepted trailing bytes")
	}

	v, err := Unmarshal(Int32(), Marshal(Int32(), -7))
	if err != nil || v != -7 {
		t.Errorf("Unmarshal(Marshal(-7)) = (%d, %v)", v, err)
	}
}

func TestStruct(t *testing.T) {
	if b := Struct().Append([]byte{1}, struct{}{}); len(b) != 1 {
		t.Errorf("Struct().Append() wrote %d bytes", len(b)-1)
	}
	if _, n, err := Struct().Decode(nil); n != 0 || err != nil {
		t.Errorf("Struct().Decode() = (%d, %v)", n, err)
	}
}
