// Package schema holds message descriptors and the registry that maps type
// names to them.
//
// A descriptor is plain data: a message name and an ordered list of fields,
// each with a number, a type (primitive kind name or message name), a
// cardinality and an optional charset. Map fields are modeled as a repeated
// synthetic message named PairName(key, value) with fields key=1 and value=2;
// the registry adds it when the owning message is registered.
//
//	reg := schema.NewRegistry()
//	err := reg.Register("test",
//		schema.OptionalField("string", "a", 1),
//		schema.PackedField("int32", "b", 2),
//		schema.MapField("int32", "string", "c", 3),
//	)
//	err = reg.Freeze()
//
// Descriptors can also be loaded from TOML with LoadTOML, or derived from
// compiled protobuf descriptors with the fromproto subpackage.
package schema
