package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wippyai/wirepb/codec"
	"github.com/wippyai/wirepb/schema"
)

const testSchema = `
[[message]]
name = "test"

[[message.field]]
name = "a"
number = 1
type = "string"

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
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	if err := schema.DecodeTOML(reg, testSchema); err != nil {
		t.Fatal(err)
	}
	if err := reg.Freeze(); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "pbwire.toml", `
schema = "schema.toml"
type = " test "
recursion_limit = 7
standard_sfixed = true
`)
	cfg, err := loadConfig(path, defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Schema != "schema.toml" || cfg.Type != "test" || cfg.RecursionLimit != 7 || !cfg.StandardSFixed {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want default kept", cfg.LogLevel)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `schema = `},
		{"unknown key", `colour = "red"`},
		{"bad limit", `recursion_limit = 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(writeFile(t, "c.toml", tt.content), defaultConfig()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPayloadHex(t *testing.T) {
	data, err := payload([]byte("0a 05 68656c\n6c6f\n"), true)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte("\x0a\x05hello"); !bytes.Equal(data, want) {
		t.Errorf("payload = % x", data)
	}
	if _, err := payload([]byte("zz"), true); err == nil {
		t.Error("expected hex error")
	}
}

func TestValuesFromTOML(t *testing.T) {
	reg := testRegistry(t)
	desc, _ := reg.Lookup("test")

	var doc map[string]any
	if _, err := toml.Decode("a = \"hi\"\nb = [1, 2]\n\n[c]\n1 = \"x\"\n-2 = \"y\"\n", &doc); err != nil {
		t.Fatal(err)
	}
	values, err := valuesFromTOML(reg, desc, doc)
	if err != nil {
		t.Fatal(err)
	}

	opts := []codec.Option{codec.WithRegistry(reg)}
	data, err := codec.NewEncoder(opts...).Encode("test", values)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	m, err := codec.NewDecoder(opts...).Decode("test", data)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := m.Get("c")
	entries, _ := c.(map[any]any)
	if len(entries) != 2 || entries[int32(1)] != "x" || entries[int32(-2)] != "y" {
		t.Errorf("c = %v", c)
	}

	if _, err := valuesFromTOML(reg, desc, map[string]any{"c": map[string]any{"one": "x"}}); err == nil {
		t.Error("expected error for non-numeric map key")
	}
}

func TestPrinterMessage(t *testing.T) {
	reg := testRegistry(t)
	dec := codec.NewDecoder(codec.WithRegistry(reg))
	m, err := dec.Decode("test", []byte{
		0x0a, 0x02, 'h', 'i',
		0x12, 0x02, 0x01, 0x02,
		0x1a, 0x05, 0x08, 0x01, 0x12, 0x01, 'x',
		0x28, 0x03,
	})
	if err != nil {
		t.Fatal(err)
	}

	var b bytes.Buffer
	p := &printer{w: &b, reg: reg}
	p.message(m, 0)

	want := strings.Join([]string{
		`a string = "hi"`,
		`b packed int32 [`,
		`  [0] = 1`,
		`  [1] = 2`,
		`]`,
		`c map<int32,string> {`,
		`  [1] = "x"`,
		`}`,
		`#5 varint = 3 (zigzag -2)`,
		``,
	}, "\n")
	if got := b.String(); got != want {
		t.Errorf("printed:\n%s\nwant:\n%s", got, want)
	}
}

func TestDumpRaw(t *testing.T) {
	var b bytes.Buffer
	p := &printer{w: &b}
	data := []byte{
		0x08, 0x96, 0x01,
		0x12, 0x03, 0x0a, 0x01, 0x00,
		0x1a, 0x02, 'o', 'k',
		0x25, 0x00, 0x00, 0x80, 0x3f,
	}
	if err := p.dumpRaw(data, 0); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		`#1 varint = 150 (zigzag 75)`,
		`#2 message {`,
		`  #1 bytes = 0x00`,
		`}`,
		`#3 bytes = "ok"`,
		`#4 fixed32 = 0x3f800000 (float 1)`,
		``,
	}, "\n")
	if got := b.String(); got != want {
		t.Errorf("dump:\n%s\nwant:\n%s", got, want)
	}

	if err := p.dumpRaw([]byte{0x0a, 0x05}, 0); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestInteractiveModel(t *testing.T) {
	reg := testRegistry(t)
	dec := codec.NewDecoder(codec.WithRegistry(reg))
	m := newInteractiveModel(reg, dec, []byte{0x0a, 0x02, 'h', 'i'}, "")

	if len(m.types) != 1 || m.types[0] != "test" {
		t.Fatalf("types = %v, want only test", m.types)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateShowTree || m.err != nil || !strings.Contains(m.tree, `"hi"`) {
		t.Errorf("after enter: state %d, err %v, tree %q", m.state, m.err, m.tree)
	}
	if !strings.Contains(m.View(), "Decoded as") {
		t.Error("tree view missing header")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateSelectType {
		t.Errorf("state = %d after esc", m.state)
	}

	bad := newInteractiveModel(reg, dec, []byte{0x0a}, "test")
	if bad.state != stateShowTree || bad.err == nil {
		t.Errorf("truncated payload: state %d, err %v", bad.state, bad.err)
	}
}
