// Package fromproto registers compiled protobuf message descriptors in a
// schema.Registry, so payloads of generated or dynamic protobuf types can be
// encoded and decoded without hand-written field lists.
package fromproto

import (
	"fmt"

	"github.com/wippyai/wirepb/errors"
	"github.com/wippyai/wirepb/schema"
	"go.uber.org/zap"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var kindNames = map[protoreflect.Kind]schema.Kind{
	protoreflect.BoolKind:     schema.KindBool,
	protoreflect.EnumKind:     schema.KindInt32,
	protoreflect.Int32Kind:    schema.KindInt32,
	protoreflect.Sint32Kind:   schema.KindSint32,
	protoreflect.Uint32Kind:   schema.KindUint32,
	protoreflect.Int64Kind:    schema.KindInt64,
	protoreflect.Sint64Kind:   schema.KindSint64,
	protoreflect.Uint64Kind:   schema.KindUint64,
	protoreflect.Sfixed32Kind: schema.KindSfixed32,
	protoreflect.Fixed32Kind:  schema.KindFixed32,
	protoreflect.FloatKind:    schema.KindFloat,
	protoreflect.Sfixed64Kind: schema.KindSfixed64,
	protoreflect.Fixed64Kind:  schema.KindFixed64,
	protoreflect.DoubleKind:   schema.KindDouble,
	protoreflect.StringKind:   schema.KindString,
	protoreflect.BytesKind:    schema.KindBytes,
}

// Register adds md and every message it references or nests to reg, under
// their full protobuf names. Messages already present in reg are skipped.
// Enums are registered as int32; groups are rejected.
func Register(reg *schema.Registry, md protoreflect.MessageDescriptor) error {
	return register(reg, md, make(map[protoreflect.FullName]bool))
}

// RegisterFile registers every top-level message of a file descriptor.
func RegisterFile(reg *schema.Registry, fd protoreflect.FileDescriptor) error {
	seen := make(map[protoreflect.FullName]bool)
	msgs := fd.Messages()
	for i := 0; i < msgs.Len(); i++ {
		if err := register(reg, msgs.Get(i), seen); err != nil {
			return err
		}
	}
	return nil
}

// TypeName is the registry name used for md.
func TypeName(md protoreflect.MessageDescriptor) string {
	return string(md.FullName())
}

func register(reg *schema.Registry, md protoreflect.MessageDescriptor, seen map[protoreflect.FullName]bool) error {
	if seen[md.FullName()] || md.IsMapEntry() {
		return nil
	}
	seen[md.FullName()] = true

	name := TypeName(md)
	var refs []protoreflect.MessageDescriptor

	if _, exists := reg.Lookup(name); !exists {
		fds := md.Fields()
		fields := make([]schema.Field, 0, fds.Len())
		for i := 0; i < fds.Len(); i++ {
			fd := fds.Get(i)
			f, err := field(name, fd)
			if err != nil {
				return err
			}
			fields = append(fields, f)

			if fd.IsMap() {
				if vd := fd.MapValue().Message(); vd != nil {
					refs = append(refs, vd)
				}
			} else if sub := fd.Message(); sub != nil {
				refs = append(refs, sub)
			}
		}
		if err := reg.Register(name, fields...); err != nil {
			return err
		}
		schema.Logger().Debug("registered protobuf descriptor",
			zap.String("type", name),
			zap.Int("fields", len(fields)))
	}

	nested := md.Messages()
	for i := 0; i < nested.Len(); i++ {
		refs = append(refs, nested.Get(i))
	}
	for _, ref := range refs {
		if err := register(reg, ref, seen); err != nil {
			return err
		}
	}
	return nil
}

func field(owner string, fd protoreflect.FieldDescriptor) (schema.Field, error) {
	name := string(fd.Name())
	num := int32(fd.Number())

	if fd.IsMap() {
		key, err := typeName(owner, fd.MapKey())
		if err != nil {
			return schema.Field{}, err
		}
		value, err := typeName(owner, fd.MapValue())
		if err != nil {
			return schema.Field{}, err
		}
		return schema.MapField(key, value, name, num), nil
	}

	t, err := typeName(owner, fd)
	if err != nil {
		return schema.Field{}, err
	}
	switch {
	case fd.IsList() && fd.IsPacked():
		return schema.PackedField(t, name, num), nil
	case fd.IsList():
		return schema.RepeatedField(t, name, num), nil
	default:
		return schema.OptionalField(t, name, num), nil
	}
}

func typeName(owner string, fd protoreflect.FieldDescriptor) (string, error) {
	switch fd.Kind() {
	case protoreflect.MessageKind:
		return TypeName(fd.Message()), nil
	case protoreflect.GroupKind:
		return "", errors.Unsupported(errors.PhaseRegister,
			fmt.Sprintf("%s.%s: group fields are not supported", owner, fd.Name()))
	}
	k, ok := kindNames[fd.Kind()]
	if !ok {
		return "", errors.Unsupported(errors.PhaseRegister,
			fmt.Sprintf("%s.%s: protobuf kind %s", owner, fd.Name(), fd.Kind()))
	}
	return k.String(), nil
}
