package codec

import (
	"strconv"

	"github.com/wippyai/wirepb/buffer"
	"github.com/wippyai/wirepb/charset"
	"github.com/wippyai/wirepb/codec/internal/coerce"
	"github.com/wippyai/wirepb/errors"
	"github.com/wippyai/wirepb/schema"
	"github.com/wippyai/wirepb/varint"
	"go.uber.org/zap"
)

// Encoder writes values in the protobuf wire format against registered
// descriptors. An Encoder is safe for concurrent use once its registry is
// no longer being mutated.
type Encoder struct {
	opts Options
}

func NewEncoder(opts ...Option) *Encoder {
	return &Encoder{opts: newOptions(opts)}
}

// Options returns the encoder's effective options.
func (e *Encoder) Options() Options {
	return e.opts
}

// Encode encodes value as typeName. For message types the result is the
// message body without its length prefix. For primitive types it is the
// value's wire encoding, which for string and bytes includes the length.
//
// value may be a *Message, a map[string]any or a struct (see Bind).
func (e *Encoder) Encode(typeName string, value any) ([]byte, error) {
	s := e.newState()
	out := buffer.NewSize(e.opts.InitialSize)

	kind, msg, err := e.opts.Registry.Resolve(typeName)
	if err != nil {
		return nil, e.fail(typeName, errors.UnknownType(errors.PhaseEncode, nil, typeName))
	}
	if kind == schema.KindMessage {
		err = s.writeMessageBody(out, msg, value, e.opts.Charset)
	} else {
		err = s.writePrimitive(out, kind, value, e.opts.Charset)
	}
	if err != nil {
		return nil, e.fail(typeName, err)
	}
	return out.Bytes(), nil
}

// EncodeTo writes value to buf. Messages are written length-prefixed so
// that consecutive calls produce a self-delimiting stream. An empty cs
// selects the encoder's charset.
func (e *Encoder) EncodeTo(buf *buffer.Buffer, typeName string, value any, cs string) error {
	if cs == "" {
		cs = e.opts.Charset
	}
	if err := e.newState().write(buf, typeName, value, cs); err != nil {
		return e.fail(typeName, err)
	}
	return nil
}

// EncodeValue encodes a single primitive value.
func (e *Encoder) EncodeValue(kind schema.Kind, value any) ([]byte, error) {
	if !kind.IsPrimitive() {
		return nil, errors.Unsupported(errors.PhaseEncode, "EncodeValue needs a primitive kind, got "+kind.String())
	}
	out := buffer.NewSize(e.opts.InitialSize)
	if err := e.newState().writePrimitive(out, kind, value, e.opts.Charset); err != nil {
		return nil, e.fail(kind.String(), err)
	}
	return out.Bytes(), nil
}

func (e *Encoder) newState() *encodeState {
	return &encodeState{opts: &e.opts, reg: e.opts.Registry}
}

func (e *Encoder) fail(typeName string, err error) error {
	fields := []zap.Field{zap.String("type", typeName), zap.Error(err)}
	if werr, ok := err.(*errors.Error); ok && len(werr.Path) > 0 {
		fields = append(fields, zap.Strings("path", werr.Path))
	}
	e.opts.logger().Debug("encode failed", fields...)
	return err
}

// encodeState carries the field path and nesting depth of one Encode call.
type encodeState struct {
	opts  *Options
	reg   *schema.Registry
	path  []string
	depth int
}

func (s *encodeState) at() []string {
	if len(s.path) == 0 {
		return nil
	}
	return append([]string(nil), s.path...)
}

func (s *encodeState) push(name string) { s.path = append(s.path, name) }
func (s *encodeState) pop()             { s.path = s.path[:len(s.path)-1] }

func (s *encodeState) write(buf *buffer.Buffer, typeName string, value any, cs string) error {
	kind, msg, err := s.reg.Resolve(typeName)
	if err != nil {
		return errors.UnknownType(errors.PhaseEncode, s.at(), typeName)
	}
	if kind == schema.KindMessage {
		return s.writeMessage(buf, msg, value, cs)
	}
	return s.writePrimitive(buf, kind, value, cs)
}

// writeMessage writes msg as a length-delimited blob.
func (s *encodeState) writeMessage(buf *buffer.Buffer, msg *schema.Message, value any, cs string) error {
	inner := getBuf()
	defer putBuf(inner)

	if err := s.writeMessageBody(inner, msg, value, cs); err != nil {
		return err
	}
	buf.WriteLengthDelimited(inner.Bytes())
	return nil
}

func (s *encodeState) writeMessageBody(buf *buffer.Buffer, msg *schema.Message, value any, cs string) error {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.opts.RecursionLimit {
		return errors.RecursionLimit(errors.PhaseEncode, s.at(), s.opts.RecursionLimit)
	}

	src, err := sourceOf(s.reg, msg, value, s.at())
	if err != nil {
		return err
	}

	for i := range msg.Fields {
		f := &msg.Fields[i]
		v, ok := src.member(f.Name)
		if !ok || v == nil {
			continue
		}
		fcs := cs
		if f.Charset != "" {
			fcs = f.Charset
		}

		s.push(f.Name)
		err := s.writeField(buf, f, v, fcs)
		s.pop()
		if err != nil {
			return err
		}
	}

	return s.writeUnknown(buf, src.unknownFields())
}

func (s *encodeState) writeField(buf *buffer.Buffer, f *schema.Field, v any, cs string) error {
	switch f.Cardinality {
	case schema.Optional:
		buf.WriteVarint(f.Tag())
		return s.writeElement(buf, f, v, cs)

	case schema.Repeated:
		seq, ok := sequence(v)
		if !ok {
			return errors.MalformedCardinality(errors.PhaseEncode, s.at(), coerce.TypeName(v), "a sequence for repeated field")
		}
		tag := f.Tag()
		for i := 0; i < seq.Len(); i++ {
			s.indexPath(i)
			buf.WriteVarint(tag)
			err := s.writeElement(buf, f, valueOf(seq.Index(i)), cs)
			s.unindexPath()
			if err != nil {
				return err
			}
		}
		return nil

	case schema.RepeatedPacked:
		seq, ok := sequence(v)
		if !ok {
			return errors.MalformedCardinality(errors.PhaseEncode, s.at(), coerce.TypeName(v), "a sequence for packed field")
		}
		if seq.Len() == 0 {
			return nil
		}
		inner := getBuf()
		defer putBuf(inner)
		for i := 0; i < seq.Len(); i++ {
			s.indexPath(i)
			err := s.writePrimitive(inner, f.Kind, valueOf(seq.Index(i)), cs)
			s.unindexPath()
			if err != nil {
				return err
			}
		}
		buf.WriteVarint(f.Tag())
		buf.WriteLengthDelimited(inner.Bytes())
		return nil

	case schema.Map:
		entries, ok := mapEntries(v)
		if !ok {
			return errors.MalformedCardinality(errors.PhaseEncode, s.at(), coerce.TypeName(v), "a map")
		}
		pair, ok := s.reg.MessageOf(f)
		if !ok {
			return errors.UnknownType(errors.PhaseEncode, s.at(), f.Type)
		}
		tag := f.Tag()
		for _, kv := range entries {
			key, val := valueOf(kv[0]), valueOf(kv[1])
			s.path[len(s.path)-1] += "[" + keyString(key) + "]"
			var err error
			switch {
			case key == nil:
				err = errors.MissingValue(errors.PhaseEncode, s.at(), f.MapKey)
			case val == nil:
				err = errors.MissingValue(errors.PhaseEncode, s.at(), f.MapValue)
			default:
				buf.WriteVarint(tag)
				err = s.writeMessage(buf, pair, pairSource{key: key, value: val}, cs)
			}
			s.path[len(s.path)-1] = f.Name
			if err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Unsupported(errors.PhaseEncode, "cardinality "+f.Cardinality.String())
}

func (s *encodeState) indexPath(i int) {
	s.path[len(s.path)-1] += "[" + strconv.Itoa(i) + "]"
}

func (s *encodeState) unindexPath() {
	last := s.path[len(s.path)-1]
	for j := len(last) - 1; j >= 0; j-- {
		if last[j] == '[' {
			s.path[len(s.path)-1] = last[:j]
			return
		}
	}
}

func keyString(k any) string {
	if str, ok := k.(string); ok {
		return strconv.Quote(str)
	}
	if k == nil {
		return "nil"
	}
	if i, ok := coerce.ToInt64(k); ok {
		return strconv.FormatInt(i, 10)
	}
	if u, ok := coerce.ToUint64(k); ok {
		return strconv.FormatUint(u, 10)
	}
	if b, ok := k.(bool); ok {
		return strconv.FormatBool(b)
	}
	return coerce.TypeName(k)
}

// writeElement writes one value of a field without its tag.
func (s *encodeState) writeElement(buf *buffer.Buffer, f *schema.Field, v any, cs string) error {
	if f.Kind != schema.KindMessage {
		return s.writePrimitive(buf, f.Kind, v, cs)
	}
	msg, ok := s.reg.MessageOf(f)
	if !ok {
		return errors.UnknownType(errors.PhaseEncode, s.at(), f.Type)
	}
	return s.writeMessage(buf, msg, v, cs)
}

func (s *encodeState) writePrimitive(buf *buffer.Buffer, kind schema.Kind, v any, cs string) error {
	if v == nil {
		return errors.MissingValue(errors.PhaseEncode, s.at(), kind.String())
	}

	var ok bool
	switch kind {
	case schema.KindBool:
		var b bool
		if b, ok = coerce.ToBool(v); ok {
			var c byte
			if b {
				c = 1
			}
			_ = buf.WriteByte(c)
		}
	case schema.KindInt32:
		var n int32
		if n, ok = coerce.ToInt32(v); ok {
			buf.WriteVarint(uint64(int64(n)))
		}
	case schema.KindUint32:
		var n uint32
		if n, ok = coerce.ToUint32(v); ok {
			buf.WriteVarint(uint64(n))
		}
	case schema.KindSint32:
		var n int32
		if n, ok = coerce.ToInt32(v); ok {
			buf.WriteVarint(uint64(varint.ZigZag32(n)))
		}
	case schema.KindFixed32:
		var n uint32
		if n, ok = coerce.ToUint32(v); ok {
			buf.WriteUint32(n)
		}
	case schema.KindSfixed32:
		var n int32
		if n, ok = coerce.ToInt32(v); ok {
			if s.opts.StandardSFixed {
				buf.WriteInt32(n)
			} else {
				buf.WriteUint32(varint.ZigZag32(n))
			}
		}
	case schema.KindInt64:
		var n int64
		if n, ok = coerce.ToInt64(v); ok {
			buf.WriteVarint(uint64(n))
		}
	case schema.KindUint64:
		var n uint64
		if n, ok = coerce.ToUint64(v); ok {
			buf.WriteVarint(n)
		}
	case schema.KindSint64:
		var n int64
		if n, ok = coerce.ToInt64(v); ok {
			buf.WriteVarint(varint.ZigZag(n))
		}
	case schema.KindFixed64:
		var n uint64
		if n, ok = coerce.ToUint64(v); ok {
			buf.WriteUint64(n)
		}
	case schema.KindSfixed64:
		var n int64
		if n, ok = coerce.ToInt64(v); ok {
			if s.opts.StandardSFixed {
				buf.WriteInt64(n)
			} else {
				buf.WriteUint64(varint.ZigZag(n))
			}
		}
	case schema.KindFloat:
		var f float32
		if f, ok = coerce.ToFloat32(v); ok {
			buf.WriteFloat32(f)
		}
	case schema.KindDouble:
		var f float64
		if f, ok = coerce.ToFloat64(v); ok {
			buf.WriteFloat64(f)
		}
	case schema.KindString:
		var str string
		if str, ok = coerce.ToString(v); ok {
			b, err := charset.TextToBytes(str, cs)
			if err != nil {
				return errors.InvalidEncoding(errors.PhaseEncode, s.at(), cs, err)
			}
			buf.WriteLengthDelimited(b)
		}
	case schema.KindBytes:
		var b []byte
		if b, ok = coerce.ToBytes(v); ok {
			buf.WriteLengthDelimited(b)
		}
	default:
		return errors.Unsupported(errors.PhaseEncode, "primitive kind "+kind.String())
	}

	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, s.at(), coerce.TypeName(v), kind.String())
	}
	return nil
}

// writeUnknown re-emits retained fields in order, each exactly once in the
// wire kind of its tag.
func (s *encodeState) writeUnknown(buf *buffer.Buffer, u *UnknownFields) error {
	var err error
	u.Range(func(f UnknownField) bool {
		_, wk := varint.DecodeTag(f.Tag)
		if schema.WireKind(wk) != f.Value.Kind {
			err = errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Path(s.at()...).
				Detail("unknown field tag %#x does not match %s value", f.Tag, f.Value.Kind).
				Build()
			return false
		}
		buf.WriteVarint(f.Tag)
		switch f.Value.Kind {
		case schema.WireVarint:
			buf.WriteVarint(f.Value.Num)
		case schema.WireFixed64:
			buf.WriteUint64(f.Value.Num)
		case schema.WireFixed32:
			buf.WriteUint32(uint32(f.Value.Num))
		case schema.WireBytes:
			buf.WriteLengthDelimited(f.Value.Bytes)
		default:
			err = errors.InvalidData(errors.PhaseEncode, s.at(), "unknown field with wire kind "+f.Value.Kind.String())
			return false
		}
		return true
	})
	return err
}
