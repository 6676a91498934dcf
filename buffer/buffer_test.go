package buffer

import (
	"bytes"
	"errors"
	"math"
	"testing"

	wirerr "github.com/wippyai/wirepb/errors"
)

func TestNewBuffer(t *testing.T) {
	b := New()
	if b.Cap() != DefaultSize {
		t.Errorf("Cap = %d, want %d", b.Cap(), DefaultSize)
	}
	if b.Len() != 0 || b.Position() != 0 {
		t.Errorf("Len=%d Position=%d, want 0, 0", b.Len(), b.Position())
	}
}

func TestWriteReadFixed(t *testing.T) {
	b := New()
	b.WriteUint8(0xab)
	b.WriteUint16(0x1234)
	b.WriteUint32(0xdeadbeef)
	b.WriteUint64(0x0102030405060708)
	b.WriteInt32(-2)
	b.WriteInt64(math.MinInt64)

	want := []byte{
		0xab,
		0x34, 0x12,
		0xef, 0xbe, 0xad, 0xde,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0xfe, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80,
	}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("Bytes = %x, want %x", b.Bytes(), want)
	}

	if err := b.SetPosition(0); err != nil {
		t.Fatal(err)
	}
	if v, err := b.ReadUint8(); err != nil || v != 0xab {
		t.Errorf("ReadUint8 = %#x, %v", v, err)
	}
	if v, err := b.ReadUint16(); err != nil || v != 0x1234 {
		t.Errorf("ReadUint16 = %#x, %v", v, err)
	}
	if v, err := b.ReadUint32(); err != nil || v != 0xdeadbeef {
		t.Errorf("ReadUint32 = %#x, %v", v, err)
	}
	if v, err := b.ReadUint64(); err != nil || v != 0x0102030405060708 {
		t.Errorf("ReadUint64 = %#x, %v", v, err)
	}
	if v, err := b.ReadInt32(); err != nil || v != -2 {
		t.Errorf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := b.ReadInt64(); err != nil || v != math.MinInt64 {
		t.Errorf("ReadInt64 = %d, %v", v, err)
	}
	if b.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", b.Remaining())
	}
}

func TestWriteReadFloat(t *testing.T) {
	b := New()
	b.WriteFloat32(1.5)
	b.WriteFloat64(-2.25)
	b.WriteFloat64(math.Inf(1))

	_ = b.SetPosition(0)
	f32, err := b.ReadFloat32()
	if err != nil || f32 != 1.5 {
		t.Errorf("ReadFloat32 = %v, %v", f32, err)
	}
	f64, err := b.ReadFloat64()
	if err != nil || f64 != -2.25 {
		t.Errorf("ReadFloat64 = %v, %v", f64, err)
	}
	inf, err := b.ReadFloat64()
	if err != nil || !math.IsInf(inf, 1) {
		t.Errorf("ReadFloat64 = %v, %v", inf, err)
	}
}

func TestWriteFixedBadWidth(t *testing.T) {
	b := New()
	if err := b.WriteFixed(1, 3); !errors.Is(err, &wirerr.Error{Kind: wirerr.KindInvalidInput}) {
		t.Errorf("WriteFixed(1, 3) error = %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d after rejected write", b.Len())
	}
	if err := b.WriteFixed(0x0102, 2); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b.Bytes(), []byte{0x02, 0x01}) {
		t.Errorf("Bytes = %x", b.Bytes())
	}
}

func TestReadFixedBadWidth(t *testing.T) {
	b := FromBytes([]byte{1, 2, 3})
	if _, err := b.ReadFixed(3); !errors.Is(err, &wirerr.Error{Kind: wirerr.KindInvalidInput}) {
		t.Errorf("ReadFixed(3) error = %v", err)
	}
}

func TestVarintIdempotence(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 1<<63 - 1, math.MaxUint64}
	b := New()
	for _, v := range values {
		b.WriteVarint(v)
	}
	_ = b.SetPosition(0)
	for _, want := range values {
		got, err := b.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint: %v", err)
		}
		if got != want {
			t.Errorf("ReadVarint = %d, want %d", got, want)
		}
	}
}

func TestLengthDelimited(t *testing.T) {
	b := New()
	b.WriteLengthDelimited([]byte("hello"))
	b.WriteLengthDelimited(nil)

	if !bytes.Equal(b.Snapshot(), []byte{0x05, 'h', 'e', 'l', 'l', 'o', 0x00}) {
		t.Fatalf("Snapshot = %x", b.Snapshot())
	}

	_ = b.SetPosition(0)
	got, err := b.ReadLengthDelimited()
	if err != nil || string(got) != "hello" {
		t.Errorf("ReadLengthDelimited = %q, %v", got, err)
	}
	empty, err := b.ReadLengthDelimited()
	if err != nil || len(empty) != 0 {
		t.Errorf("ReadLengthDelimited = %q, %v", empty, err)
	}
}

func TestReadLengthDelimitedCopies(t *testing.T) {
	src := []byte{0x02, 'a', 'b'}
	b := FromBytes(src)
	got, err := b.ReadLengthDelimited()
	if err != nil {
		t.Fatal(err)
	}
	src[1] = 'z'
	if string(got) != "ab" {
		t.Errorf("ReadLengthDelimited aliases input: %q", got)
	}
}

func TestTruncation(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(*Buffer) error
	}{
		{"fixed32", []byte{1, 2}, func(b *Buffer) error { _, err := b.ReadUint32(); return err }},
		{"fixed64", []byte{1, 2, 3, 4, 5, 6, 7}, func(b *Buffer) error { _, err := b.ReadUint64(); return err }},
		{"byte", nil, func(b *Buffer) error { _, err := b.ReadByte(); return err }},
		{"varint", []byte{0x80, 0x80}, func(b *Buffer) error { _, err := b.ReadVarint(); return err }},
		{"length", []byte{0x05, 'a', 'b'}, func(b *Buffer) error { _, err := b.ReadLengthDelimited(); return err }},
		{"raw", []byte{1}, func(b *Buffer) error { _, err := b.ReadRaw(2); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := FromBytes(tt.data)
			err := tt.read(b)
			if !errors.Is(err, wirerr.ErrTruncatedBuffer) {
				t.Fatalf("error = %v, want truncated_buffer", err)
			}
			if b.Position() != 0 {
				t.Errorf("Position after failed read = %d, want 0", b.Position())
			}
		})
	}
}

func TestVarintOverflow(t *testing.T) {
	b := FromBytes([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f})
	_, err := b.ReadVarint()
	if !errors.Is(err, wirerr.ErrInvalidData) {
		t.Errorf("error = %v, want invalid_data", err)
	}
}

func TestGrowthPreservesBytes(t *testing.T) {
	b := New()
	var want []byte
	for i := 0; i < 5000; i++ {
		chunk := bytes.Repeat([]byte{byte(i)}, i%17+1)
		b.WriteRaw(chunk)
		want = append(want, chunk...)
		if !bytes.Equal(b.Bytes(), want) {
			t.Fatalf("content diverged after write %d", i)
		}
	}

	// capacity doubles from 64, so reallocations are bounded by log2(n/64)+1
	n := len(want)
	limit := 1
	for c := DefaultSize; c < n; c *= 2 {
		limit++
	}
	if b.Grows() > limit {
		t.Errorf("Grows = %d for %d bytes, want <= %d", b.Grows(), n, limit)
	}
	if b.Cap() < n {
		t.Errorf("Cap = %d < Len %d", b.Cap(), n)
	}
}

func TestLargeSingleWrite(t *testing.T) {
	b := New()
	b.WriteRaw(make([]byte, 1000))
	if b.Cap() != 1024 {
		t.Errorf("Cap = %d, want 1024", b.Cap())
	}
	if b.Grows() != 1 {
		t.Errorf("Grows = %d, want 1", b.Grows())
	}
}

func TestSeekBackDoesNotTruncate(t *testing.T) {
	b := New()
	b.WriteRaw([]byte{1, 2, 3, 4})
	if err := b.SetPosition(1); err != nil {
		t.Fatal(err)
	}
	b.WriteUint8(9)
	if b.Len() != 4 {
		t.Errorf("Len = %d, want 4", b.Len())
	}
	if !bytes.Equal(b.Bytes(), []byte{1, 9, 3, 4}) {
		t.Errorf("Bytes = %v", b.Bytes())
	}
	if !bytes.Equal(b.Snapshot(), []byte{1, 9}) {
		t.Errorf("Snapshot = %v", b.Snapshot())
	}
	v, err := b.ReadUint8()
	if err != nil || v != 3 {
		t.Errorf("ReadUint8 after seek = %d, %v", v, err)
	}
}

func TestSetPositionBounds(t *testing.T) {
	b := FromBytes([]byte{1, 2})
	if err := b.SetPosition(2); err != nil {
		t.Errorf("SetPosition(Len) = %v", err)
	}
	if err := b.SetPosition(3); err == nil {
		t.Error("SetPosition past Len should fail")
	}
	if err := b.SetPosition(-1); err == nil {
		t.Error("SetPosition(-1) should fail")
	}
}

func TestReset(t *testing.T) {
	b := New()
	b.WriteRaw(make([]byte, 200))
	c := b.Cap()
	b.Reset()
	if b.Len() != 0 || b.Position() != 0 || b.Cap() != c {
		t.Errorf("after Reset Len=%d Position=%d Cap=%d", b.Len(), b.Position(), b.Cap())
	}
}
