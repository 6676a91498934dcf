package schema

// Kind identifies the value kind of a field: one of the fifteen protobuf
// scalar kinds or a message reference.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt32
	KindUint32
	KindSint32
	KindFixed32
	KindSfixed32
	KindInt64
	KindUint64
	KindSint64
	KindFixed64
	KindSfixed64
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindMessage
)

var kindNames = [...]string{
	KindBool:     "bool",
	KindInt32:    "int32",
	KindUint32:   "uint32",
	KindSint32:   "sint32",
	KindFixed32:  "fixed32",
	KindSfixed32: "sfixed32",
	KindInt64:    "int64",
	KindUint64:   "uint64",
	KindSint64:   "sint64",
	KindFixed64:  "fixed64",
	KindSfixed64: "sfixed64",
	KindFloat:    "float",
	KindDouble:   "double",
	KindString:   "string",
	KindBytes:    "bytes",
	KindMessage:  "message",
}

var kindWire = [...]WireKind{
	KindBool:     WireVarint,
	KindInt32:    WireVarint,
	KindUint32:   WireVarint,
	KindSint32:   WireVarint,
	KindFixed32:  WireFixed32,
	KindSfixed32: WireFixed32,
	KindInt64:    WireVarint,
	KindUint64:   WireVarint,
	KindSint64:   WireVarint,
	KindFixed64:  WireFixed64,
	KindSfixed64: WireFixed64,
	KindFloat:    WireFixed32,
	KindDouble:   WireFixed64,
	KindString:   WireBytes,
	KindBytes:    WireBytes,
	KindMessage:  WireBytes,
}

var primitiveKinds = func() map[string]Kind {
	m := make(map[string]Kind, KindBytes+1)
	for k := KindBool; k <= KindBytes; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the primitive kind with the given name.
// Message names are not kinds and report false.
func ParseKind(name string) (Kind, bool) {
	k, ok := primitiveKinds[name]
	return k, ok
}

// IsPrimitiveName reports whether name is one of the fifteen scalar kind names.
func IsPrimitiveName(name string) bool {
	_, ok := primitiveKinds[name]
	return ok
}

// WireKind returns the wire kind values of this kind are written with.
func (k Kind) WireKind() WireKind {
	if int(k) < len(kindWire) {
		return kindWire[k]
	}
	return WireBytes
}

func (k Kind) IsPrimitive() bool {
	return k <= KindBytes
}

// IsPackable reports whether repeated values of this kind may share one
// length-delimited block.
func (k Kind) IsPackable() bool {
	return k <= KindDouble
}

// IsMapKey reports whether this kind may key a map field.
func (k Kind) IsMapKey() bool {
	switch k {
	case KindFloat, KindDouble, KindBytes, KindMessage:
		return false
	default:
		return k <= KindString
	}
}

// IsSigned reports whether decoded values need a sign fixup.
func (k Kind) IsSigned() bool {
	switch k {
	case KindInt32, KindSint32, KindSfixed32, KindInt64, KindSint64, KindSfixed64:
		return true
	default:
		return false
	}
}

// Is32 reports whether values of this kind occupy 32 bits in memory.
func (k Kind) Is32() bool {
	switch k {
	case KindInt32, KindUint32, KindSint32, KindFixed32, KindSfixed32, KindFloat:
		return true
	default:
		return false
	}
}

// WireKind is the physical encoding of a field on the wire, stored in the
// low three bits of its tag.
type WireKind uint8

const (
	WireVarint  WireKind = 0
	WireFixed64 WireKind = 1
	WireBytes   WireKind = 2
	WireFixed32 WireKind = 5
)

// Valid reports whether w is one of the four supported wire kinds.
// Group wire kinds 3 and 4 are not supported.
func (w WireKind) Valid() bool {
	switch w {
	case WireVarint, WireFixed64, WireBytes, WireFixed32:
		return true
	default:
		return false
	}
}

func (w WireKind) String() string {
	switch w {
	case WireVarint:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireBytes:
		return "bytes"
	case WireFixed32:
		return "fixed32"
	case 3:
		return "start_group"
	case 4:
		return "end_group"
	default:
		return "invalid"
	}
}
