// Package wirepb is a schema-driven encoder and decoder for the Protocol
// Buffers binary wire format.
//
// Message types are described at run time as data, registered in a
// schema.Registry, and values are encoded from and decoded into dynamic
// messages, plain maps or Go structs. Fields the schema does not know about
// survive a decode/encode round trip byte for byte.
//
// # Architecture Overview
//
//	wirepb/              Root package with Marshal/Unmarshal over the default registry
//	├── buffer/          Growable byte buffer with cursor
//	├── varint/          Varints, zig-zag and field tags
//	├── schema/          Kinds, descriptors, registry and TOML schema loader
//	│   └── fromproto/   Registration from compiled protobuf descriptors
//	├── charset/         Text encodings for string fields
//	├── codec/           Encoder, decoder, unknown fields and struct binding
//	├── errors/          Structured error types for debugging
//	└── cmd/pbwire/      Command line inspector
//
// # Quick Start
//
//	wirepb.Register("person",
//	    schema.OptionalField("string", "name", 1),
//	    schema.RepeatedField("string", "emails", 2),
//	    schema.MapField("string", "int32", "scores", 3),
//	)
//	wirepb.Freeze()
//
//	type Person struct {
//	    Name   string
//	    Emails []string
//	    Scores map[string]int32
//	}
//
//	data, err := wirepb.Marshal("person", Person{Name: "Ada"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var p Person
//	err = wirepb.Unmarshal("person", data, &p)
//
// # Thread Safety
//
// Registration is not meant to race with encoding. Register everything, call
// Freeze, and then encode and decode from any number of goroutines.
package wirepb
