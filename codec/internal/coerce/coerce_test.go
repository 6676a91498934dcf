package coerce

import (
	"math"
	"testing"
)

type color int32

type label string

func TestToInt32(t *testing.T) {
	tests := []struct {
		in   any
		want int32
		ok   bool
	}{
		{int32(-5), -5, true},
		{int(7), 7, true},
		{int64(math.MaxInt32), math.MaxInt32, true},
		{int64(math.MaxInt32 + 1), 0, false},
		{uint32(math.MaxUint32), 0, false},
		{float64(3), 3, true},
		{float64(3.5), 0, false},
		{color(2), 2, true},
		{"1", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToInt32(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToInt32(%v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToUint64(t *testing.T) {
	tests := []struct {
		in   any
		want uint64
		ok   bool
	}{
		{uint64(math.MaxUint64), math.MaxUint64, true},
		{int(-1), 0, false},
		{int64(42), 42, true},
		{float32(8), 8, true},
		{color(3), 3, true},
		{color(-3), 0, false},
	}
	for _, tt := range tests {
		got, ok := ToUint64(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToUint64(%v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToUint32(t *testing.T) {
	if v, ok := ToUint32(uint64(math.MaxUint32)); !ok || v != math.MaxUint32 {
		t.Errorf("ToUint32(MaxUint32) = %d, %v", v, ok)
	}
	if _, ok := ToUint32(uint64(math.MaxUint32) + 1); ok {
		t.Error("ToUint32 accepted an overflowing value")
	}
}

func TestToFloat(t *testing.T) {
	if v, ok := ToFloat32(float64(1.5)); !ok || v != 1.5 {
		t.Errorf("ToFloat32(1.5) = %v, %v", v, ok)
	}
	if _, ok := ToFloat32(float64(0.1)); ok {
		t.Error("ToFloat32 accepted a lossy float64")
	}
	if v, ok := ToFloat32(math.Inf(-1)); !ok || !math.IsInf(float64(v), -1) {
		t.Errorf("ToFloat32(-Inf) = %v, %v", v, ok)
	}
	if v, ok := ToFloat64(int(3)); !ok || v != 3 {
		t.Errorf("ToFloat64(3) = %v, %v", v, ok)
	}
	if _, ok := ToFloat64(int64(1<<60 + 1)); ok {
		t.Error("ToFloat64 accepted an imprecise int64")
	}
}

func TestToStringAndBytes(t *testing.T) {
	if s, ok := ToString(label("x")); !ok || s != "x" {
		t.Errorf("ToString(label) = %q, %v", s, ok)
	}
	if _, ok := ToString(5); ok {
		t.Error("ToString accepted an int")
	}
	if b, ok := ToBytes("ab"); !ok || string(b) != "ab" {
		t.Errorf("ToBytes(string) = %q, %v", b, ok)
	}
	if _, ok := ToBytes([]int{1}); ok {
		t.Error("ToBytes accepted []int")
	}
}

func TestToBool(t *testing.T) {
	type flag bool
	if v, ok := ToBool(flag(true)); !ok || !v {
		t.Errorf("ToBool(flag) = %v, %v", v, ok)
	}
	if _, ok := ToBool(1); ok {
		t.Error("ToBool accepted an int")
	}
}

func TestTypeName(t *testing.T) {
	if TypeName(nil) != "nil" {
		t.Errorf("TypeName(nil) = %q", TypeName(nil))
	}
	if TypeName(color(1)) != "coerce.color" {
		t.Errorf("TypeName(color) = %q", TypeName(color(1)))
	}
}
