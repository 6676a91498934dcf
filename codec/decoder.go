package codec

import (
	"math"

	"github.com/wippyai/wirepb/buffer"
	"github.com/wippyai/wirepb/charset"
	"github.com/wippyai/wirepb/errors"
	"github.com/wippyai/wirepb/schema"
	"github.com/wippyai/wirepb/varint"
	"go.uber.org/zap"
)

// Decoder reads protobuf wire data against registered descriptors.
// A Decoder is safe for concurrent use once its registry is no longer being
// mutated.
type Decoder struct {
	opts Options
}

func NewDecoder(opts ...Option) *Decoder {
	return &Decoder{opts: newOptions(opts)}
}

// Options returns the decoder's effective options.
func (d *Decoder) Options() Options {
	return d.opts
}

// Decode decodes data as the body of a typeName message.
func (d *Decoder) Decode(typeName string, data []byte) (*Message, error) {
	msg, ok := d.opts.Registry.Lookup(typeName)
	if !ok {
		return nil, d.fail(typeName, errors.UnknownType(errors.PhaseDecode, nil, typeName))
	}
	out := NewMessage(msg.Name)
	if err := d.newState().readBody(buffer.FromBytes(data), msg, out, d.opts.Charset); err != nil {
		return nil, d.fail(typeName, err)
	}
	return out, nil
}

// DecodeInto merges data into m, which names its own type. Singular members
// are overwritten, repeated members appended to and map entries added.
func (d *Decoder) DecodeInto(m *Message, data []byte) error {
	msg, ok := d.opts.Registry.Lookup(m.Type())
	if !ok {
		return d.fail(m.Type(), errors.UnknownType(errors.PhaseDecode, nil, m.Type()))
	}
	if err := d.newState().readBody(buffer.FromBytes(data), msg, m, d.opts.Charset); err != nil {
		return d.fail(m.Type(), err)
	}
	return nil
}

// DecodeValue decodes data as typeName, which may be primitive. It mirrors
// Encoder.Encode: message data has no length prefix; the result is a
// *Message for message types and the native Go value otherwise.
func (d *Decoder) DecodeValue(typeName string, data []byte) (any, error) {
	kind, msg, err := d.opts.Registry.Resolve(typeName)
	if err != nil {
		return nil, d.fail(typeName, errors.UnknownType(errors.PhaseDecode, nil, typeName))
	}
	if kind == schema.KindMessage {
		out := NewMessage(msg.Name)
		if err := d.newState().readBody(buffer.FromBytes(data), msg, out, d.opts.Charset); err != nil {
			return nil, d.fail(typeName, err)
		}
		return out, nil
	}

	buf := buffer.FromBytes(data)
	s := d.newState()
	v, err := s.readPrimitive(buf, kind, d.opts.Charset)
	if err == nil && buf.Remaining() > 0 {
		err = errors.InvalidData(errors.PhaseDecode, nil, "trailing bytes after value")
	}
	if err != nil {
		return nil, d.fail(typeName, err)
	}
	return v, nil
}

// DecodeFrom reads one typeName value at the buffer's cursor. Messages are
// expected length-prefixed, as written by Encoder.EncodeTo. An empty cs
// selects the decoder's charset.
func (d *Decoder) DecodeFrom(buf *buffer.Buffer, typeName, cs string) (any, error) {
	if cs == "" {
		cs = d.opts.Charset
	}
	kind, msg, err := d.opts.Registry.Resolve(typeName)
	if err != nil {
		return nil, d.fail(typeName, errors.UnknownType(errors.PhaseDecode, nil, typeName))
	}
	s := d.newState()
	var v any
	if kind == schema.KindMessage {
		v, err = s.readMessage(buf, msg, cs)
	} else {
		v, err = s.readPrimitive(buf, kind, cs)
	}
	if err != nil {
		return nil, d.fail(typeName, err)
	}
	return v, nil
}

func (d *Decoder) newState() *decodeState {
	return &decodeState{opts: &d.opts, reg: d.opts.Registry}
}

func (d *Decoder) fail(typeName string, err error) error {
	fields := []zap.Field{zap.String("type", typeName), zap.Error(err)}
	if werr, ok := err.(*errors.Error); ok && len(werr.Path) > 0 {
		fields = append(fields, zap.Strings("path", werr.Path))
	}
	d.opts.logger().Debug("decode failed", fields...)
	return err
}

// decodeState carries the field path and nesting depth of one decode call.
type decodeState struct {
	opts  *Options
	reg   *schema.Registry
	path  []string
	depth int
}

func (s *decodeState) at() []string {
	if len(s.path) == 0 {
		return nil
	}
	return append([]string(nil), s.path...)
}

// located attaches the current path to buffer errors, which carry none.
func (s *decodeState) located(err error) error {
	if werr, ok := err.(*errors.Error); ok && len(werr.Path) == 0 {
		werr.Path = s.at()
	}
	return err
}

// readMessage reads a length-delimited message. Its body is decoded from a
// view bounded by the declared length, so no read can cross into the parent.
func (s *decodeState) readMessage(buf *buffer.Buffer, msg *schema.Message, cs string) (*Message, error) {
	body, err := buf.ReadLengthDelimitedView()
	if err != nil {
		return nil, s.located(err)
	}
	out := NewMessage(msg.Name)
	if err := s.readBody(buffer.FromBytes(body), msg, out, cs); err != nil {
		return nil, err
	}
	return out, nil
}

// readBody decodes fields until buf is exhausted.
func (s *decodeState) readBody(buf *buffer.Buffer, msg *schema.Message, out *Message, cs string) error {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.opts.RecursionLimit {
		return errors.RecursionLimit(errors.PhaseDecode, s.at(), s.opts.RecursionLimit)
	}

	for buf.Remaining() > 0 {
		tag, err := buf.ReadVarint()
		if err != nil {
			return s.located(err)
		}
		num, wk := varint.DecodeTag(tag)
		if num < varint.MinFieldNumber {
			return errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(s.at()...).
				Type(msg.Name).
				Detail("invalid field number in tag %#x", tag).
				Build()
		}
		wire := schema.WireKind(wk)
		if !wire.Valid() {
			return errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(s.at()...).
				Type(msg.Name).
				Detail("field %d uses unsupported wire kind %s", num, wire).
				Build()
		}

		f, ok := msg.FieldByNumber(num)
		if !ok || !f.Accepts(wire) {
			if err := s.readUnknown(buf, tag, wire, out); err != nil {
				return err
			}
			continue
		}

		fcs := cs
		if f.Charset != "" {
			fcs = f.Charset
		}
		s.path = append(s.path, f.Name)
		err = s.readField(buf, f, wire, out, fcs)
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *decodeState) readField(buf *buffer.Buffer, f *schema.Field, wire schema.WireKind, out *Message, cs string) error {
	switch f.Cardinality {
	case schema.Optional:
		v, err := s.readElement(buf, f, cs)
		if err != nil {
			return err
		}
		out.Set(f.Name, v)
		return nil

	case schema.Repeated, schema.RepeatedPacked:
		list := existingList(out.members[f.Name])
		if wire == schema.WireBytes && f.Kind.IsPackable() {
			block, err := buf.ReadLengthDelimitedView()
			if err != nil {
				return s.located(err)
			}
			inner := buffer.FromBytes(block)
			for inner.Remaining() > 0 {
				v, err := s.readPrimitive(inner, f.Kind, cs)
				if err != nil {
					return err
				}
				list = append(list, v)
			}
		} else {
			v, err := s.readElement(buf, f, cs)
			if err != nil {
				return err
			}
			list = append(list, v)
		}
		if list == nil {
			list = []any{}
		}
		out.members[f.Name] = list
		return nil

	case schema.Map:
		pairMsg, ok := s.reg.MessageOf(f)
		if !ok {
			return errors.UnknownType(errors.PhaseDecode, s.at(), f.Type)
		}
		pair, err := s.readMessage(buf, pairMsg, cs)
		if err != nil {
			return err
		}
		key, val := pairValues(pairMsg, pair)
		m := existingMap(out.members[f.Name])
		m[key] = val
		out.members[f.Name] = m
		return nil
	}
	return errors.Unsupported(errors.PhaseDecode, "cardinality "+f.Cardinality.String())
}

// existingList returns the elements already held by a repeated member so
// decoded elements append to them. Typed slices are copied into []any.
func existingList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	seq, ok := sequence(v)
	if !ok {
		return nil
	}
	list := make([]any, seq.Len())
	for i := range list {
		list[i] = valueOf(seq.Index(i))
	}
	return list
}

// existingMap returns the entries already held by a map member as a
// map[any]any, copying typed maps.
func existingMap(v any) map[any]any {
	if m, ok := v.(map[any]any); ok && m != nil {
		return m
	}
	entries, _ := mapEntries(v)
	m := make(map[any]any, len(entries))
	for _, e := range entries {
		m[valueOf(e[0])] = valueOf(e[1])
	}
	return m
}

// pairValues extracts a map entry, substituting zero values for a missing
// key or value.
func pairValues(pairMsg *schema.Message, pair *Message) (any, any) {
	key, ok := pair.Get("key")
	if !ok {
		kf, _ := pairMsg.FieldByNumber(schema.PairKeyNumber)
		key = zeroValue(kf.Kind)
	}
	val, ok := pair.Get("value")
	if !ok {
		vf, _ := pairMsg.FieldByNumber(schema.PairValueNumber)
		if vf.Kind == schema.KindMessage {
			val = NewMessage(vf.Type)
		} else {
			val = zeroValue(vf.Kind)
		}
	}
	return key, val
}

func zeroValue(k schema.Kind) any {
	switch k {
	case schema.KindBool:
		return false
	case schema.KindInt32, schema.KindSint32, schema.KindSfixed32:
		return int32(0)
	case schema.KindUint32, schema.KindFixed32:
		return uint32(0)
	case schema.KindInt64, schema.KindSint64, schema.KindSfixed64:
		return int64(0)
	case schema.KindUint64, schema.KindFixed64:
		return uint64(0)
	case schema.KindFloat:
		return float32(0)
	case schema.KindDouble:
		return float64(0)
	case schema.KindString:
		return ""
	case schema.KindBytes:
		return []byte{}
	}
	return nil
}

func (s *decodeState) readElement(buf *buffer.Buffer, f *schema.Field, cs string) (any, error) {
	if f.Kind != schema.KindMessage {
		return s.readPrimitive(buf, f.Kind, cs)
	}
	msg, ok := s.reg.MessageOf(f)
	if !ok {
		return nil, errors.UnknownType(errors.PhaseDecode, s.at(), f.Type)
	}
	return s.readMessage(buf, msg, cs)
}

func (s *decodeState) readPrimitive(buf *buffer.Buffer, kind schema.Kind, cs string) (any, error) {
	var (
		v   any
		err error
	)
	switch kind.WireKind() {
	case schema.WireVarint:
		var n uint64
		if n, err = buf.ReadVarint(); err == nil {
			v = varintValue(kind, n)
		}
	case schema.WireFixed32:
		var n uint32
		if n, err = buf.ReadUint32(); err == nil {
			v = s.fixed32Value(kind, n)
		}
	case schema.WireFixed64:
		var n uint64
		if n, err = buf.ReadUint64(); err == nil {
			v = s.fixed64Value(kind, n)
		}
	case schema.WireBytes:
		if kind == schema.KindString {
			var raw []byte
			if raw, err = buf.ReadLengthDelimitedView(); err == nil {
				text, cerr := charset.BytesToText(raw, cs)
				if cerr != nil {
					return nil, errors.InvalidEncoding(errors.PhaseDecode, s.at(), cs, cerr)
				}
				v = text
			}
		} else {
			v, err = buf.ReadLengthDelimited()
		}
	}
	if err != nil {
		return nil, s.located(err)
	}
	return v, nil
}

func varintValue(kind schema.Kind, n uint64) any {
	switch kind {
	case schema.KindBool:
		return n != 0
	case schema.KindInt32:
		return varint.Signed32(n)
	case schema.KindUint32:
		return uint32(n)
	case schema.KindSint32:
		return varint.InvZigZag32(uint32(n))
	case schema.KindInt64:
		return varint.Signed64(n)
	case schema.KindSint64:
		return varint.InvZigZag(n)
	default:
		return n
	}
}

func (s *decodeState) fixed32Value(kind schema.Kind, n uint32) any {
	switch kind {
	case schema.KindSfixed32:
		if s.opts.StandardSFixed {
			return int32(n)
		}
		return varint.InvZigZag32(n)
	case schema.KindFloat:
		return math.Float32frombits(n)
	default:
		return n
	}
}

func (s *decodeState) fixed64Value(kind schema.Kind, n uint64) any {
	switch kind {
	case schema.KindSfixed64:
		if s.opts.StandardSFixed {
			return int64(n)
		}
		return varint.InvZigZag(n)
	case schema.KindDouble:
		return math.Float64frombits(n)
	default:
		return n
	}
}

// readUnknown stores a field with no matching descriptor under its full tag.
func (s *decodeState) readUnknown(buf *buffer.Buffer, tag uint64, wire schema.WireKind, out *Message) error {
	var (
		v   UnknownValue
		err error
	)
	switch wire {
	case schema.WireVarint:
		var n uint64
		n, err = buf.ReadVarint()
		v = VarintValue(n)
	case schema.WireFixed64:
		var n uint64
		n, err = buf.ReadUint64()
		v = Fixed64Value(n)
	case schema.WireFixed32:
		var n uint32
		n, err = buf.ReadUint32()
		v = Fixed32Value(n)
	case schema.WireBytes:
		var b []byte
		b, err = buf.ReadLengthDelimited()
		v = BytesValue(b)
	}
	if err != nil {
		return s.located(err)
	}
	out.Unknown().fields = append(out.Unknown().fields, UnknownField{Tag: tag, Value: v})
	return nil
}
