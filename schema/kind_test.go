package schema

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindBool, "bool"},
		{KindSint32, "sint32"},
		{KindSfixed64, "sfixed64"},
		{KindFloat, "float"},
		{KindDouble, "double"},
		{KindBytes, "bytes"},
		{KindMessage, "message"},
		{Kind(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := KindBool; k <= KindBytes; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	for _, name := range []string{"message", "Person", "", "int"} {
		if _, ok := ParseKind(name); ok {
			t.Errorf("ParseKind(%q) should fail", name)
		}
	}
}

func TestKindWireKind(t *testing.T) {
	tests := []struct {
		kind Kind
		want WireKind
	}{
		{KindBool, WireVarint},
		{KindInt32, WireVarint},
		{KindUint64, WireVarint},
		{KindSint64, WireVarint},
		{KindFixed32, WireFixed32},
		{KindSfixed32, WireFixed32},
		{KindFloat, WireFixed32},
		{KindFixed64, WireFixed64},
		{KindSfixed64, WireFixed64},
		{KindDouble, WireFixed64},
		{KindString, WireBytes},
		{KindBytes, WireBytes},
		{KindMessage, WireBytes},
	}
	for _, tt := range tests {
		if got := tt.kind.WireKind(); got != tt.want {
			t.Errorf("%s.WireKind() = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind      Kind
		primitive bool
		packable  bool
		mapKey    bool
	}{
		{KindBool, true, true, true},
		{KindInt32, true, true, true},
		{KindSfixed64, true, true, true},
		{KindFloat, true, true, false},
		{KindDouble, true, true, false},
		{KindString, true, false, true},
		{KindBytes, true, false, false},
		{KindMessage, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.kind.IsPrimitive(); got != tt.primitive {
			t.Errorf("%s.IsPrimitive() = %v", tt.kind, got)
		}
		if got := tt.kind.IsPackable(); got != tt.packable {
			t.Errorf("%s.IsPackable() = %v", tt.kind, got)
		}
		if got := tt.kind.IsMapKey(); got != tt.mapKey {
			t.Errorf("%s.IsMapKey() = %v", tt.kind, got)
		}
	}
}

func TestWireKindValid(t *testing.T) {
	for wk := WireKind(0); wk < 8; wk++ {
		want := wk == 0 || wk == 1 || wk == 2 || wk == 5
		if wk.Valid() != want {
			t.Errorf("WireKind(%d).Valid() = %v, want %v", wk, wk.Valid(), want)
		}
	}
	if WireKind(3).String() != "start_group" {
		t.Errorf("WireKind(3).String() = %q", WireKind(3).String())
	}
}

func TestParseCardinality(t *testing.T) {
	tests := []struct {
		label string
		want  Cardinality
		ok    bool
	}{
		{"", Optional, true},
		{"optional", Optional, true},
		{"repeated", Repeated, true},
		{"packed", RepeatedPacked, true},
		{"map", Map, true},
		{"required", Optional, false},
	}
	for _, tt := range tests {
		got, ok := ParseCardinality(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCardinality(%q) = %v, %v", tt.label, got, ok)
		}
	}
}
