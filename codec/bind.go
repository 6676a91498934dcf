package codec

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/wippyai/wirepb/codec/internal/coerce"
	"github.com/wippyai/wirepb/errors"
	"github.com/wippyai/wirepb/schema"
)

// UnknownTag marks the struct field that keeps unknown fields:
//
//	Unknown codec.UnknownFields `pb:"-unknown"`
const UnknownTag = "-unknown"

// Binding maps the fields of a message type onto the fields of a Go struct.
type Binding struct {
	goType  reflect.Type
	message *schema.Message
	fields  map[string]boundField
	unknown []int
}

type boundField struct {
	goType reflect.Type
	index  []int
}

// GoType returns the bound struct type.
func (b *Binding) GoType() reflect.Type { return b.goType }

// Message returns the bound message descriptor.
func (b *Binding) Message() *schema.Message { return b.message }

// Bound reports whether the named message field has a Go counterpart.
func (b *Binding) Bound(name string) bool {
	_, ok := b.fields[name]
	return ok
}

type bindKey struct {
	reg    *schema.Registry
	goType reflect.Type
	name   string
}

var bindings sync.Map // bindKey -> *Binding

// Bind matches the fields of message typeName to the exported fields of the
// struct type t (or *t). A Go field matches by its pb:"name" tag, then by a
// case-insensitive name, then by its snake_case form. Message fields without
// a Go counterpart are skipped. Bindings are cached.
func Bind(reg *schema.Registry, typeName string, t reflect.Type) (*Binding, error) {
	msg, ok := reg.Lookup(typeName)
	if !ok {
		return nil, errors.UnknownType(errors.PhaseBind, nil, typeName)
	}
	return bindMessage(reg, msg, t, nil)
}

func bindMessage(reg *schema.Registry, msg *schema.Message, t reflect.Type, path []string) (*Binding, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Path(path...).
			Detail("Go type cannot be nil").
			Build()
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseBind, path, t.String(), msg.Name)
	}

	key := bindKey{reg: reg, goType: t, name: msg.Name}
	if cached, ok := bindings.Load(key); ok {
		return cached.(*Binding), nil
	}

	b := &Binding{
		goType:  t,
		message: msg,
		fields:  make(map[string]boundField, len(msg.Fields)),
	}
	for i := range msg.Fields {
		sf, ok := findGoField(t, msg.Fields[i].Name)
		if !ok {
			continue
		}
		b.fields[msg.Fields[i].Name] = boundField{goType: sf.Type, index: sf.Index}
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Tag.Get("pb") != UnknownTag {
			continue
		}
		if sf.Type != unknownFieldsType && sf.Type != reflect.PointerTo(unknownFieldsType) {
			return nil, errors.TypeMismatch(errors.PhaseBind, append(path, sf.Name), sf.Type.String(), "codec.UnknownFields")
		}
		b.unknown = sf.Index
	}

	actual, _ := bindings.LoadOrStore(key, b)
	return actual.(*Binding), nil
}

var unknownFieldsType = reflect.TypeOf(UnknownFields{})

// findGoField matches by: 1) pb:"name" tag, 2) case-insensitive, 3) snake_case.
func findGoField(goType reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < goType.NumField(); i++ {
		field := goType.Field(i)
		if !field.IsExported() {
			continue
		}

		if tag := field.Tag.Get("pb"); tag != "" {
			if tag == name {
				return field, true
			}
			if tag == "-" || tag == UnknownTag {
				continue
			}
		}

		if strings.EqualFold(field.Name, name) {
			return field, true
		}

		if toSnakeCase(field.Name) == name {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Marshal encodes the struct (or pointer to struct) v as typeName.
func (e *Encoder) Marshal(typeName string, v any) ([]byte, error) {
	msg, ok := e.opts.Registry.Lookup(typeName)
	if !ok {
		return nil, e.fail(typeName, errors.UnknownType(errors.PhaseBind, nil, typeName))
	}
	if _, err := bindMessage(e.opts.Registry, msg, reflect.TypeOf(v), nil); err != nil {
		return nil, e.fail(typeName, err)
	}
	return e.Encode(typeName, v)
}

// Unmarshal decodes data as typeName into out, which must be a non-nil
// pointer to a struct, a *Message or a *map[string]any.
func (d *Decoder) Unmarshal(typeName string, data []byte, out any) error {
	switch o := out.(type) {
	case *Message:
		if o == nil {
			break
		}
		if o.typeName == "" {
			o.typeName = typeName
		}
		if o.members == nil {
			o.members = make(map[string]any)
		}
		return d.DecodeInto(o, data)
	case *map[string]any:
		if o == nil {
			break
		}
		m, err := d.Decode(typeName, data)
		if err != nil {
			return err
		}
		*o = m.AsMap()
		return nil
	}

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return d.fail(typeName, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			GoType(coerce.TypeName(out)).
			Detail("Unmarshal needs a non-nil pointer").
			Build())
	}

	m, err := d.Decode(typeName, data)
	if err != nil {
		return err
	}
	if err := assign(d.opts.Registry, rv.Elem(), m, nil); err != nil {
		return d.fail(typeName, err)
	}
	return nil
}

// assign stores a decoded value into dst, converting to dst's Go type.
func assign(reg *schema.Registry, dst reflect.Value, v any, path []string) error {
	switch dst.Kind() {
	case reflect.Interface:
		if dst.NumMethod() == 0 {
			dst.Set(reflect.ValueOf(v))
			return nil
		}

	case reflect.Ptr:
		if m, ok := v.(*Message); ok && dst.Type() == messagePtrType {
			dst.Set(reflect.ValueOf(m))
			return nil
		}
		n := reflect.New(dst.Type().Elem())
		if err := assign(reg, n.Elem(), v, path); err != nil {
			return err
		}
		dst.Set(n)
		return nil

	case reflect.Struct:
		m, ok := v.(*Message)
		if !ok {
			break
		}
		if dst.Type() == messageType {
			dst.Set(reflect.ValueOf(*m))
			return nil
		}
		return assignMessage(reg, dst, m, path)

	case reflect.Slice:
		if b, ok := v.([]byte); ok && dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes(append([]byte(nil), b...))
			return nil
		}
		list, ok := v.([]any)
		if !ok {
			break
		}
		s := reflect.MakeSlice(dst.Type(), len(list), len(list))
		for i, e := range list {
			if err := assign(reg, s.Index(i), e, path); err != nil {
				return err
			}
		}
		dst.Set(s)
		return nil

	case reflect.Map:
		if m, ok := v.(*Message); ok && dst.Type() == reflect.TypeOf(map[string]any(nil)) {
			dst.Set(reflect.ValueOf(m.AsMap()))
			return nil
		}
		entries, ok := v.(map[any]any)
		if !ok {
			break
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(entries))
		for k, e := range entries {
			kv := reflect.New(dst.Type().Key()).Elem()
			if err := assign(reg, kv, k, path); err != nil {
				return err
			}
			ev := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(reg, ev, e, path); err != nil {
				return err
			}
			out.SetMapIndex(kv, ev)
		}
		dst.Set(out)
		return nil

	case reflect.Bool:
		if b, ok := v.(bool); ok {
			dst.SetBool(b)
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, ok := coerce.ToInt64(v); ok {
			if dst.OverflowInt(i) {
				return errors.Overflow(errors.PhaseBind, path, v, dst.Type().String())
			}
			dst.SetInt(i)
			return nil
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u, ok := coerce.ToUint64(v); ok {
			if dst.OverflowUint(u) {
				return errors.Overflow(errors.PhaseBind, path, v, dst.Type().String())
			}
			dst.SetUint(u)
			return nil
		}

	case reflect.Float32, reflect.Float64:
		if f, ok := coerce.ToFloat64(v); ok {
			dst.SetFloat(f)
			return nil
		}

	case reflect.String:
		if s, ok := v.(string); ok {
			dst.SetString(s)
			return nil
		}
	}
	return errors.TypeMismatch(errors.PhaseBind, path, dst.Type().String(), coerce.TypeName(v))
}

func assignMessage(reg *schema.Registry, dst reflect.Value, m *Message, path []string) error {
	msg, ok := reg.Lookup(m.Type())
	if !ok {
		return errors.UnknownType(errors.PhaseBind, path, m.Type())
	}
	b, err := bindMessage(reg, msg, dst.Type(), path)
	if err != nil {
		return err
	}
	for name, bf := range b.fields {
		v, ok := m.Get(name)
		if !ok {
			continue
		}
		fieldPath := append(append([]string(nil), path...), name)
		if err := assign(reg, dst.FieldByIndex(bf.index), v, fieldPath); err != nil {
			return err
		}
	}
	if b.unknown != nil && m.HasUnknown() {
		fv := dst.FieldByIndex(b.unknown)
		u := &UnknownFields{fields: m.unknown.Fields()}
		if fv.Kind() == reflect.Ptr {
			fv.Set(reflect.ValueOf(u))
		} else {
			fv.Set(reflect.ValueOf(*u))
		}
	}
	return nil
}
