package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	wirerr "github.com/wippyai/wirepb/errors"
)

const testDocument = `
[[message]]
name = "test"

[[message.field]]
name = "a"
number = 1
type = "string"
charset = "utf8"

[[message.field]]
name = "b"
number = 2
type = "int32"
label = "packed"

[[message.field]]
name = "c"
number = 3
type = "map"
key = "int32"
value = "string"

[[message.field]]
name = "d"
number = 4
type = "inner"
label = "repeated"

[[message]]
name = "inner"

[[message.field]]
name = "v"
number = 1
type = "sint64"
`

func TestDecodeTOML(t *testing.T) {
	reg := NewRegistry()
	if err := DecodeTOML(reg, testDocument); err != nil {
		t.Fatalf("DecodeTOML: %v", err)
	}
	if err := reg.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	msg, ok := reg.Lookup("test")
	if !ok {
		t.Fatal("test not registered")
	}

	tests := []struct {
		name string
		c    Cardinality
		kind Kind
	}{
		{"a", Optional, KindString},
		{"b", RepeatedPacked, KindInt32},
		{"c", Map, KindMessage},
		{"d", Repeated, KindMessage},
	}
	for _, tt := range tests {
		f, ok := msg.FieldByName(tt.name)
		if !ok {
			t.Fatalf("field %q missing", tt.name)
		}
		if f.Cardinality != tt.c || f.Kind != tt.kind {
			t.Errorf("%s: %s %s, want %s %s", tt.name, f.Cardinality, f.Kind, tt.c, tt.kind)
		}
	}
	if a, _ := msg.FieldByName("a"); a.Charset != "utf8" {
		t.Errorf("charset = %q", a.Charset)
	}
	if c, _ := msg.FieldByName("c"); c.MapKey != "int32" || c.MapValue != "string" {
		t.Errorf("map types = %q, %q", c.MapKey, c.MapValue)
	}
}

func TestDecodeTOMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind error
	}{
		{"syntax", `[[message]`, wirerr.ErrInvalidData},
		{"no name", "[[message]]\n[[message.field]]\nname = \"a\"\nnumber = 1\ntype = \"int32\"\n", wirerr.ErrInvalidData},
		{"bad label", "[[message]]\nname = \"m\"\n[[message.field]]\nname = \"a\"\nnumber = 1\ntype = \"int32\"\nlabel = \"required\"\n", wirerr.ErrInvalidData},
		{"map without value", "[[message]]\nname = \"m\"\n[[message.field]]\nname = \"a\"\nnumber = 1\ntype = \"map\"\nkey = \"int32\"\n", wirerr.ErrInvalidData},
		{"reserved number", "[[message]]\nname = \"m\"\n[[message.field]]\nname = \"a\"\nnumber = 19000\ntype = \"int32\"\n", wirerr.ErrRegistration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecodeTOML(NewRegistry(), tt.doc)
			if !errors.Is(err, tt.kind) {
				t.Errorf("DecodeTOML error = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	if err := os.WriteFile(path, []byte(testDocument), 0o600); err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry()
	if err := LoadTOML(reg, path); err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if _, ok := reg.Lookup("inner"); !ok {
		t.Error("inner not registered")
	}

	err := LoadTOML(NewRegistry(), filepath.Join(t.TempDir(), "missing.toml"))
	var werr *wirerr.Error
	if !errors.As(err, &werr) || werr.Phase != wirerr.PhaseLoad {
		t.Errorf("LoadTOML(missing) error = %v", err)
	}
}
