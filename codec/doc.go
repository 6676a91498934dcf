// Package codec encodes and decodes Protocol Buffers wire data against the
// descriptors of a schema.Registry.
//
// # Values
//
// Messages are held in a dynamic Message: a type name, named members and the
// unknown fields read with it. The encoder also accepts map[string]any and
// Go structs (see Bind), so callers can stay with their own types:
//
//	Go value                     message member
//	──────────────────────────────────────────────
//	bool, ints, uints, floats    scalar kinds (coerced when lossless)
//	string, []byte               string, bytes
//	*Message, map[string]any     nested message
//	struct, *struct              nested message via Bind
//	slice, array                 repeated / packed
//	map                          map<K, V>
//
// # Encoding
//
//	enc := codec.NewEncoder(codec.WithRegistry(reg))
//	body, err := enc.Encode("test", codec.NewMessage("test").Set("a", "hello"))
//	// body = 0a 05 68 65 6c 6c 6f
//
// Encode returns the message body without its own length prefix. Fields are
// written in declaration order, map entries by ascending key, and unknown
// fields last in the order they were read.
//
// # Decoding
//
//	dec := codec.NewDecoder(codec.WithRegistry(reg))
//	m, err := dec.Decode("test", body)
//	v, _ := m.Get("a") // "hello"
//
// Tags that match no declared field, or arrive with a wire kind the field
// cannot take, are kept in the message's UnknownFields and written back
// unchanged by the next Encode. Each nested message is decoded from a view
// bounded by its declared length.
//
// # Errors
//
// All failures are *errors.Error values with Phase encode, decode or bind and
// the member path where they happened, for example "items[2].name".
//
// Encoders and decoders are safe for concurrent use; freeze the registry
// before sharing them across goroutines.
package codec
