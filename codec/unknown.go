package codec

import (
	"github.com/wippyai/wirepb/errors"
	"github.com/wippyai/wirepb/schema"
	"github.com/wippyai/wirepb/varint"
)

// UnknownValue is the raw payload of a field with no matching descriptor.
// Kind selects which member is meaningful: Num for varint, fixed32 and
// fixed64 values, Bytes for length-delimited ones.
type UnknownValue struct {
	Bytes []byte
	Num   uint64
	Kind  schema.WireKind
}

func VarintValue(v uint64) UnknownValue  { return UnknownValue{Kind: schema.WireVarint, Num: v} }
func Fixed32Value(v uint32) UnknownValue { return UnknownValue{Kind: schema.WireFixed32, Num: uint64(v)} }
func Fixed64Value(v uint64) UnknownValue { return UnknownValue{Kind: schema.WireFixed64, Num: v} }
func BytesValue(b []byte) UnknownValue   { return UnknownValue{Kind: schema.WireBytes, Bytes: b} }

// UnknownField is one retained tag and its value.
type UnknownField struct {
	Value UnknownValue
	Tag   uint64
}

// Number returns the field number of the tag.
func (f UnknownField) Number() int32 {
	n, _ := varint.DecodeTag(f.Tag)
	return n
}

// UnknownFields keeps unmatched fields in the order they were read, so a
// decode then encode reproduces them byte for byte. Repeated occurrences of
// the same tag are all kept.
type UnknownFields struct {
	fields []UnknownField
}

// Add appends a field. The tag's wire kind must match v.Kind.
func (u *UnknownFields) Add(tag uint64, v UnknownValue) error {
	num, wk := varint.DecodeTag(tag)
	if num < varint.MinFieldNumber {
		return errors.InvalidInput(errors.PhaseDecode, "unknown field tag has an invalid field number")
	}
	if schema.WireKind(wk) != v.Kind {
		return errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Detail("tag %#x has wire kind %s, value is %s", tag, schema.WireKind(wk), v.Kind).
			Build()
	}
	u.fields = append(u.fields, UnknownField{Tag: tag, Value: v})
	return nil
}

// Len returns the number of retained fields.
func (u *UnknownFields) Len() int {
	if u == nil {
		return 0
	}
	return len(u.fields)
}

// Get returns the last value stored under tag.
func (u *UnknownFields) Get(tag uint64) (UnknownValue, bool) {
	if u == nil {
		return UnknownValue{}, false
	}
	for i := len(u.fields) - 1; i >= 0; i-- {
		if u.fields[i].Tag == tag {
			return u.fields[i].Value, true
		}
	}
	return UnknownValue{}, false
}

// Range calls fn for each field in order until fn returns false.
func (u *UnknownFields) Range(fn func(UnknownField) bool) {
	if u == nil {
		return
	}
	for _, f := range u.fields {
		if !fn(f) {
			return
		}
	}
}

// Fields returns a copy of the retained fields.
func (u *UnknownFields) Fields() []UnknownField {
	if u == nil || len(u.fields) == 0 {
		return nil
	}
	out := make([]UnknownField, len(u.fields))
	copy(out, u.fields)
	return out
}

// Reset drops every retained field.
func (u *UnknownFields) Reset() {
	u.fields = u.fields[:0]
}

func (u *UnknownFields) merge(other *UnknownFields) {
	if other == nil {
		return
	}
	u.fields = append(u.fields, other.fields...)
}
