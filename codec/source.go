package codec

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/wippyai/wirepb/codec/internal/coerce"
	"github.com/wippyai/wirepb/errors"
	"github.com/wippyai/wirepb/schema"
)

// source reads the members of a message-shaped value during encoding.
type source interface {
	member(name string) (any, bool)
	unknownFields() *UnknownFields
}

type messageSource struct{ m *Message }

func (s messageSource) member(name string) (any, bool) { return s.m.Get(name) }
func (s messageSource) unknownFields() *UnknownFields  { return s.m.unknown }

// mapSource serves map[string]any values; they carry no unknown fields.
type mapSource map[string]any

func (s mapSource) member(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}
func (s mapSource) unknownFields() *UnknownFields { return nil }

// pairSource is the synthetic key/value message of one map entry.
type pairSource struct {
	key   any
	value any
}

func (s pairSource) member(name string) (any, bool) {
	switch name {
	case "key":
		return s.key, true
	case "value":
		return s.value, true
	}
	return nil, false
}
func (s pairSource) unknownFields() *UnknownFields { return nil }

type structSource struct {
	b *Binding
	v reflect.Value
}

func (s structSource) member(name string) (any, bool) {
	bf, ok := s.b.fields[name]
	if !ok {
		return nil, false
	}
	fv := s.v.FieldByIndex(bf.index)
	switch fv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if fv.IsNil() {
			return nil, false
		}
		if fv.Kind() == reflect.Ptr && fv.Type() != messagePtrType {
			fv = fv.Elem()
		}
	case reflect.Map, reflect.Slice:
		if fv.IsNil() {
			return nil, false
		}
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		// scalars at their zero value are absent; use a pointer to send zero
		if fv.IsZero() {
			return nil, false
		}
	}
	return fv.Interface(), true
}

func (s structSource) unknownFields() *UnknownFields {
	if s.b.unknown == nil {
		return nil
	}
	fv := s.v.FieldByIndex(s.b.unknown)
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil
		}
		return fv.Interface().(*UnknownFields)
	}
	if fv.CanAddr() {
		return fv.Addr().Interface().(*UnknownFields)
	}
	u := fv.Interface().(UnknownFields)
	return &u
}

var (
	messagePtrType = reflect.TypeOf((*Message)(nil))
	messageType    = messagePtrType.Elem()
)

// sourceOf adapts a value to the members of msg.
func sourceOf(reg *schema.Registry, msg *schema.Message, value any, path []string) (source, error) {
	switch v := value.(type) {
	case nil:
		return nil, errors.MissingValue(errors.PhaseEncode, path, msg.Name)
	case *Message:
		if v == nil {
			return nil, errors.MissingValue(errors.PhaseEncode, path, msg.Name)
		}
		if v.typeName != "" && v.typeName != msg.Name {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, "*codec.Message("+v.typeName+")", msg.Name)
		}
		return messageSource{v}, nil
	case Message:
		return messageSource{&v}, nil
	case map[string]any:
		return mapSource(v), nil
	case pairSource:
		return v, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errors.MissingValue(errors.PhaseEncode, path, msg.Name)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, coerce.TypeName(value), msg.Name)
	}
	b, err := bindMessage(reg, msg, rv.Type(), path)
	if err != nil {
		return nil, err
	}
	return structSource{b: b, v: rv}, nil
}

// sequence returns the elements of a repeated member.
func sequence(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	}
	return reflect.Value{}, false
}

// mapEntries returns the entries of a map member ordered by key.
func mapEntries(v any) ([][2]reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	out := make([][2]reflect.Value, len(keys))
	for i, k := range keys {
		out[i] = [2]reflect.Value{k, rv.MapIndex(k)}
	}
	return out, true
}

func keyLess(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface && !a.IsNil() {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface && !b.IsNil() {
		b = b.Elem()
	}
	switch {
	case isInt(a) && isInt(b):
		return a.Int() < b.Int()
	case isUint(a) && isUint(b):
		return a.Uint() < b.Uint()
	case a.Kind() == reflect.String && b.Kind() == reflect.String:
		return a.String() < b.String()
	case a.Kind() == reflect.Bool && b.Kind() == reflect.Bool:
		return !a.Bool() && b.Bool()
	}
	return fmt.Sprint(valueOf(a)) < fmt.Sprint(valueOf(b))
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// valueOf unwraps a reflect.Value, mapping invalid and nil interfaces to nil.
func valueOf(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Interface && v.IsNil() {
		return nil
	}
	return v.Interface()
}
