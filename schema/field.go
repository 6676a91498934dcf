package schema

import (
	"github.com/wippyai/wirepb/varint"
)

// Cardinality describes how many values a field carries and how they are laid out.
type Cardinality uint8

const (
	Optional Cardinality = iota
	Repeated
	RepeatedPacked
	Map
)

var cardinalityNames = [...]string{
	Optional:       "optional",
	Repeated:       "repeated",
	RepeatedPacked: "packed",
	Map:            "map",
}

func (c Cardinality) String() string {
	if int(c) < len(cardinalityNames) {
		return cardinalityNames[c]
	}
	return "unknown"
}

// ParseCardinality maps a label ("optional", "repeated", "packed", "map") to a Cardinality.
// The empty label is Optional.
func ParseCardinality(label string) (Cardinality, bool) {
	if label == "" {
		return Optional, true
	}
	for c, name := range cardinalityNames {
		if name == label {
			return Cardinality(c), true
		}
	}
	return Optional, false
}

// Field describes one member of a message.
//
// Type is either a primitive kind name or the name of a registered message.
// Map fields carry the synthetic pair message name in Type and their key and
// value types in MapKey and MapValue. Kind and WireKind are derived from Type
// at registration.
type Field struct {
	message     *Message
	Name        string
	Type        string
	Charset     string
	MapKey      string
	MapValue    string
	Number      int32
	Cardinality Cardinality
	Kind        Kind
	WireKind    WireKind
}

// Tag returns number<<3 | wire kind as written on the wire. Packed fields
// report the length-delimited wire kind.
func (f *Field) Tag() uint64 {
	return varint.EncodeTag(f.Number, uint8(f.EncodedWireKind()))
}

// EncodedWireKind is the wire kind of the field's tag.
func (f *Field) EncodedWireKind() WireKind {
	if f.Cardinality == RepeatedPacked {
		return WireBytes
	}
	return f.WireKind
}

// Accepts reports whether a tag with wire kind wk belongs to this field.
// Repeated scalars accept both the packed and the unpacked layout.
func (f *Field) Accepts(wk WireKind) bool {
	switch f.Cardinality {
	case Repeated, RepeatedPacked:
		if f.Kind.IsPackable() {
			return wk == f.WireKind || wk == WireBytes
		}
	}
	return wk == f.EncodedWireKind()
}

// Message returns the resolved message type of a message or map field.
// It is nil for primitive fields and before the registry is frozen.
func (f *Field) Message() *Message {
	return f.message
}

// IsMessage reports whether the field's values are messages.
func (f *Field) IsMessage() bool {
	return f.Kind == KindMessage
}

// FieldOption adjusts a Field built by one of the field constructors.
type FieldOption func(*Field)

// WithCharset sets the text charset of a string field (or of the string key
// or value of a map field).
func WithCharset(cs string) FieldOption {
	return func(f *Field) {
		f.Charset = cs
	}
}

func newField(typeName, name string, number int32, c Cardinality, opts []FieldOption) Field {
	f := Field{
		Name:        name,
		Type:        typeName,
		Number:      number,
		Cardinality: c,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// OptionalField declares a singular field.
func OptionalField(typeName, name string, number int32, opts ...FieldOption) Field {
	return newField(typeName, name, number, Optional, opts)
}

// RepeatedField declares a repeated field with one tag per element.
func RepeatedField(typeName, name string, number int32, opts ...FieldOption) Field {
	return newField(typeName, name, number, Repeated, opts)
}

// PackedField declares a repeated scalar field written as one length-delimited block.
func PackedField(typeName, name string, number int32, opts ...FieldOption) Field {
	return newField(typeName, name, number, RepeatedPacked, opts)
}

// MapField declares a map field. Entries are written as the synthetic
// message PairName(keyType, valueType) which the registry adds on Register.
func MapField(keyType, valueType, name string, number int32, opts ...FieldOption) Field {
	f := newField(PairName(keyType, valueType), name, number, Map, opts)
	f.MapKey = keyType
	f.MapValue = valueType
	return f
}

// PairName is the registry name of the synthetic key/value message of a map.
func PairName(keyType, valueType string) string {
	return "pair<" + keyType + "," + valueType + ">"
}

// Pair field numbers within a map entry message.
const (
	PairKeyNumber   int32 = 1
	PairValueNumber int32 = 2
)
