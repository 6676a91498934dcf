package varint

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestAppend(t *testing.T) {
	tests := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
		{math.MaxInt64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
		{math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}

	for _, tt := range tests {
		got := Append(nil, tt.v)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Append(%d) = %x, want %x", tt.v, got, tt.want)
		}
		if Size(tt.v) != len(tt.want) {
			t.Errorf("Size(%d) = %d, want %d", tt.v, Size(tt.v), len(tt.want))
		}
	}
}

func TestAppendMatchesProtowire(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, 1 << 32, math.MaxInt64, math.MaxUint64}
	for i := uint(0); i < 64; i++ {
		values = append(values, 1<<i, 1<<i-1)
	}
	for _, v := range values {
		got := Append(nil, v)
		want := protowire.AppendVarint(nil, v)
		if !bytes.Equal(got, want) {
			t.Errorf("Append(%d) = %x, protowire = %x", v, got, want)
		}
		if Size(v) != protowire.SizeVarint(v) {
			t.Errorf("Size(%d) = %d, protowire = %d", v, Size(v), protowire.SizeVarint(v))
		}
	}
}

func TestConsumeRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, math.MaxInt64, math.MaxUint64} {
		enc := Append(nil, v)
		got, n := Consume(enc)
		if n != len(enc) {
			t.Errorf("Consume(%x) consumed %d, want %d", enc, n, len(enc))
		}
		if got != v {
			t.Errorf("Consume(Append(%d)) = %d", v, got)
		}
	}
}

func TestConsumeNegativeAsUint64(t *testing.T) {
	n := int64(-1)
	enc := Append(nil, uint64(n))
	if len(enc) != MaxLen {
		t.Fatalf("negative value encoded in %d bytes, want %d", len(enc), MaxLen)
	}
	got, _ := Consume(enc)
	if Signed64(got) != -1 {
		t.Errorf("Signed64 = %d, want -1", Signed64(got))
	}
	if Signed32(got) != -1 {
		t.Errorf("Signed32 = %d, want -1", Signed32(got))
	}
}

func TestConsumeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"continuation without end", []byte{0x80}, ErrTruncated},
		{"nine continuation bytes", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, ErrTruncated},
		{"tenth byte too large", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}, ErrOverflow},
		{"eleven bytes", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x81, 0x00}, ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n := Consume(tt.in)
			if n >= 0 {
				t.Fatalf("Consume(%x) succeeded with n=%d", tt.in, n)
			}
			if err := ParseError(n); !errors.Is(err, tt.want) {
				t.Errorf("ParseError = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestZigZag(t *testing.T) {
	tests := []struct {
		n    int64
		want uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2147483647, 4294967294},
		{-2147483648, 4294967295},
		{math.MaxInt64, math.MaxUint64 - 1},
		{math.MinInt64, math.MaxUint64},
	}

	for _, tt := range tests {
		if got := ZigZag(tt.n); got != tt.want {
			t.Errorf("ZigZag(%d) = %d, want %d", tt.n, got, tt.want)
		}
		if got := protowire.EncodeZigZag(tt.n); got != tt.want {
			t.Errorf("protowire disagrees for %d: %d", tt.n, got)
		}
		if got := InvZigZag(tt.want); got != tt.n {
			t.Errorf("InvZigZag(%d) = %d, want %d", tt.want, got, tt.n)
		}
	}
}

func TestZigZagBijection(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}
	for i := uint(0); i < 63; i++ {
		values = append(values, 1<<i, -(1 << i), 1<<i-1)
	}
	for _, n := range values {
		if got := InvZigZag(ZigZag(n)); got != n {
			t.Errorf("InvZigZag(ZigZag(%d)) = %d", n, got)
		}
	}

	for _, n := range []int32{0, 1, -1, math.MaxInt32, math.MinInt32} {
		if got := InvZigZag32(ZigZag32(n)); got != n {
			t.Errorf("InvZigZag32(ZigZag32(%d)) = %d", n, got)
		}
		if uint64(ZigZag32(n)) != ZigZag(int64(n)) {
			t.Errorf("ZigZag32(%d) disagrees with ZigZag", n)
		}
	}
}

func TestSigned32(t *testing.T) {
	tests := []struct {
		v    uint64
		want int32
	}{
		{0, 0},
		{0x7fffffff, math.MaxInt32},
		{0x80000000, math.MinInt32},
		{0xffffffff, -1},
		{0xffffffffffffffff, -1},
		{0x1_0000_0005, 5},
	}
	for _, tt := range tests {
		if got := Signed32(tt.v); got != tt.want {
			t.Errorf("Signed32(%#x) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		num  int32
		wk   uint8
		want uint64
	}{
		{1, 2, 0x0a},
		{2, 0, 0x10},
		{2, 2, 0x12},
		{3, 2, 0x1a},
		{MaxFieldNumber, 5, uint64(MaxFieldNumber)<<3 | 5},
	}
	for _, tt := range tests {
		got := EncodeTag(tt.num, tt.wk)
		if got != tt.want {
			t.Errorf("EncodeTag(%d, %d) = %#x, want %#x", tt.num, tt.wk, got, tt.want)
		}
		if got != protowire.EncodeTag(protowire.Number(tt.num), protowire.Type(tt.wk)) {
			t.Errorf("EncodeTag(%d, %d) disagrees with protowire", tt.num, tt.wk)
		}
		num, wk := DecodeTag(got)
		if num != tt.num || wk != tt.wk {
			t.Errorf("DecodeTag(%#x) = (%d, %d)", got, num, wk)
		}
	}

	if num, _ := DecodeTag(uint64(MaxFieldNumber+1) << 3); num != -1 {
		t.Errorf("DecodeTag of oversized number = %d, want -1", num)
	}
}
