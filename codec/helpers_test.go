package codec

import (
	"testing"

	"github.com/wippyai/wirepb/schema"
)

var scalarKinds = []string{
	"bool", "int32", "uint32", "sint32", "fixed32", "sfixed32",
	"int64", "uint64", "sint64", "fixed64", "sfixed64",
	"float", "double", "string", "bytes",
}

// testRegistry registers the messages shared by the codec tests:
//
//	test     a string = 1, b packed int32 = 2, c map<int32, string> = 3
//	scalars  one optional field per primitive kind, named after it, numbered 1..15
//	list     values repeated int32 = 2
//	plist    values packed int32 = 2
//	small    a string = 1
//	node     child node = 1, value int32 = 2
//	outer    inner inner = 1, items repeated inner = 2, index map<string, inner> = 3
//	inner    name string = 1, id int64 = 2
func testRegistry(t testing.TB) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()

	scalars := make([]schema.Field, len(scalarKinds))
	for i, k := range scalarKinds {
		scalars[i] = schema.OptionalField(k, k, int32(i+1))
	}

	must := func(name string, fields ...schema.Field) {
		t.Helper()
		if err := reg.Register(name, fields...); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}
	must("test",
		schema.OptionalField("string", "a", 1),
		schema.PackedField("int32", "b", 2),
		schema.MapField("int32", "string", "c", 3),
	)
	must("scalars", scalars...)
	must("list", schema.RepeatedField("int32", "values", 2))
	must("plist", schema.PackedField("int32", "values", 2))
	must("small", schema.OptionalField("string", "a", 1))
	must("node",
		schema.OptionalField("node", "child", 1),
		schema.OptionalField("int32", "value", 2),
	)
	must("outer",
		schema.OptionalField("inner", "inner", 1),
		schema.RepeatedField("inner", "items", 2),
		schema.MapField("string", "inner", "index", 3),
	)
	must("inner",
		schema.OptionalField("string", "name", 1),
		schema.OptionalField("int64", "id", 2),
	)

	if err := reg.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return reg
}

func newCodec(t testing.TB, opts ...Option) (*Encoder, *Decoder) {
	t.Helper()
	opts = append([]Option{WithRegistry(testRegistry(t))}, opts...)
	return NewEncoder(opts...), NewDecoder(opts...)
}

func nested(depth int) *Message {
	m := NewMessage("node").Set("value", int32(depth))
	for i := depth - 1; i > 0; i-- {
		m = NewMessage("node").Set("value", int32(i)).Set("child", m)
	}
	return m
}
