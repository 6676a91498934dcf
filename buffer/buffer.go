package buffer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wippyai/wirepb/errors"
	"github.com/wippyai/wirepb/varint"
)

// DefaultSize is the initial capacity of a Buffer created by New.
const DefaultSize = 64

// Buffer is a read/write cursor over an auto-expanding byte region.
//
// The logical length and the cursor are independent: writes extend the
// length when they pass it, seeking backwards never truncates.
type Buffer struct {
	buf    []byte
	length int
	pos    int
	grows  int
}

// New creates an empty Buffer with DefaultSize capacity.
func New() *Buffer {
	return NewSize(DefaultSize)
}

// NewSize creates an empty Buffer with at least size bytes of capacity.
func NewSize(size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Buffer{buf: make([]byte, size)}
}

// FromBytes wraps b for reading. The Buffer takes ownership of b; later
// writes may modify it in place.
func FromBytes(b []byte) *Buffer {
	return &Buffer{buf: b, length: len(b)}
}

// Position returns the cursor position.
func (b *Buffer) Position() int {
	return b.pos
}

// SetPosition moves the cursor. pos must lie within [0, Len()].
func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 || pos > b.length {
		return errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Detail("position %d outside [0, %d]", pos, b.length).
			Value(pos).
			Build()
	}
	b.pos = pos
	return nil
}

// Len returns the logical length.
func (b *Buffer) Len() int {
	return b.length
}

// Cap returns the capacity of the backing region.
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// Remaining returns the number of bytes between the cursor and the logical length.
func (b *Buffer) Remaining() int {
	return b.length - b.pos
}

// Grows reports how many times the backing region was reallocated.
func (b *Buffer) Grows() int {
	return b.grows
}

// Bytes returns the logical content. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.length]
}

// Snapshot returns a copy of the bytes before the cursor.
func (b *Buffer) Snapshot() []byte {
	out := make([]byte, b.pos)
	copy(out, b.buf[:b.pos])
	return out
}

// Reset empties the buffer and keeps its capacity.
func (b *Buffer) Reset() {
	b.length = 0
	b.pos = 0
}

// reserve makes room for n bytes at the cursor, doubling capacity until it fits.
func (b *Buffer) reserve(n int) []byte {
	need := b.pos + n
	if need > len(b.buf) {
		c := len(b.buf)
		if c == 0 {
			c = DefaultSize
		}
		for c < need {
			c *= 2
		}
		nb := make([]byte, c)
		copy(nb, b.buf[:b.length])
		b.buf = nb
		b.grows++
	}
	p := b.buf[b.pos:need]
	b.pos = need
	if need > b.length {
		b.length = need
	}
	return p
}

// WriteByte writes a single byte. It never fails.
func (b *Buffer) WriteByte(c byte) error {
	b.reserve(1)[0] = c
	return nil
}

// WriteRaw writes p without a length prefix.
func (b *Buffer) WriteRaw(p []byte) {
	copy(b.reserve(len(p)), p)
}

// WriteFixed writes the low width bytes of v little-endian. width must be
// 1, 2, 4 or 8; any other width fails with invalid_input and writes nothing.
func (b *Buffer) WriteFixed(v uint64, width int) error {
	switch width {
	case 1, 2, 4, 8:
	default:
		return errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("unsupported fixed width %d", width))
	}
	b.putFixed(v, width)
	return nil
}

func (b *Buffer) putFixed(v uint64, width int) {
	switch width {
	case 1:
		b.reserve(1)[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b.reserve(2), uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b.reserve(4), uint32(v))
	default:
		binary.LittleEndian.PutUint64(b.reserve(8), v)
	}
}

func (b *Buffer) WriteUint8(v uint8)   { b.putFixed(uint64(v), 1) }
func (b *Buffer) WriteUint16(v uint16) { b.putFixed(uint64(v), 2) }
func (b *Buffer) WriteUint32(v uint32) { b.putFixed(uint64(v), 4) }
func (b *Buffer) WriteUint64(v uint64) { b.putFixed(v, 8) }
func (b *Buffer) WriteInt8(v int8)     { b.putFixed(uint64(v), 1) }
func (b *Buffer) WriteInt16(v int16)   { b.putFixed(uint64(v), 2) }
func (b *Buffer) WriteInt32(v int32)   { b.putFixed(uint64(v), 4) }
func (b *Buffer) WriteInt64(v int64)   { b.putFixed(uint64(v), 8) }

// WriteFloat32 writes the IEEE-754 bits of v.
func (b *Buffer) WriteFloat32(v float32) {
	b.putFixed(uint64(math.Float32bits(v)), 4)
}

// WriteFloat64 writes the IEEE-754 bits of v.
func (b *Buffer) WriteFloat64(v float64) {
	b.putFixed(math.Float64bits(v), 8)
}

// WriteVarint writes v as a base-128 varint.
func (b *Buffer) WriteVarint(v uint64) {
	var scratch [varint.MaxLen]byte
	b.WriteRaw(varint.Append(scratch[:0], v))
}

// WriteLengthDelimited writes a varint length prefix followed by p.
func (b *Buffer) WriteLengthDelimited(p []byte) {
	b.WriteVarint(uint64(len(p)))
	b.WriteRaw(p)
}

// ReadByte reads a single byte.
func (b *Buffer) ReadByte() (byte, error) {
	if b.pos >= b.length {
		return 0, errors.TruncatedBuffer(errors.PhaseDecode, nil, 1, 0)
	}
	c := b.buf[b.pos]
	b.pos++
	return c, nil
}

// ReadRaw reads exactly n bytes. The result aliases the buffer.
func (b *Buffer) ReadRaw(n int) ([]byte, error) {
	if n < 0 || n > b.Remaining() {
		return nil, errors.TruncatedBuffer(errors.PhaseDecode, nil, n, b.Remaining())
	}
	p := b.buf[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

// ReadFixed reads width bytes little-endian. width must be 1, 2, 4 or 8.
func (b *Buffer) ReadFixed(width int) (uint64, error) {
	switch width {
	case 1, 2, 4, 8:
	default:
		return 0, errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("unsupported fixed width %d", width))
	}
	p, err := b.ReadRaw(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(p[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(p)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(p)), nil
	default:
		return binary.LittleEndian.Uint64(p), nil
	}
}

func (b *Buffer) ReadUint8() (uint8, error) {
	v, err := b.ReadFixed(1)
	return uint8(v), err
}

func (b *Buffer) ReadUint16() (uint16, error) {
	v, err := b.ReadFixed(2)
	return uint16(v), err
}

func (b *Buffer) ReadUint32() (uint32, error) {
	v, err := b.ReadFixed(4)
	return uint32(v), err
}

func (b *Buffer) ReadUint64() (uint64, error) {
	return b.ReadFixed(8)
}

func (b *Buffer) ReadInt8() (int8, error) {
	v, err := b.ReadFixed(1)
	return int8(v), err
}

func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadFixed(2)
	return int16(v), err
}

func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadFixed(4)
	return int32(v), err
}

func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadFixed(8)
	return int64(v), err
}

// ReadFloat32 reads 4 bytes as IEEE-754 bits.
func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadFixed(4)
	return math.Float32frombits(uint32(v)), err
}

// ReadFloat64 reads 8 bytes as IEEE-754 bits.
func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadFixed(8)
	return math.Float64frombits(v), err
}

// ReadVarint reads a base-128 varint. The cursor does not move on error.
func (b *Buffer) ReadVarint() (uint64, error) {
	v, n := varint.Consume(b.buf[b.pos:b.length])
	if n < 0 {
		cause := varint.ParseError(n)
		if cause == varint.ErrOverflow {
			return 0, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Detail("varint overflow at position %d", b.pos).
				Cause(cause).
				Build()
		}
		return 0, errors.New(errors.PhaseDecode, errors.KindTruncatedBuffer).
			Detail("varint truncated at position %d", b.pos).
			Cause(cause).
			Build()
	}
	b.pos += n
	return v, nil
}

// ReadLengthDelimitedView reads a varint length and returns that many bytes
// without copying. The cursor does not move on error.
func (b *Buffer) ReadLengthDelimitedView() ([]byte, error) {
	start := b.pos
	l, err := b.ReadVarint()
	if err != nil {
		return nil, err
	}
	if l > uint64(b.Remaining()) {
		have := b.Remaining()
		b.pos = start
		return nil, errors.New(errors.PhaseDecode, errors.KindTruncatedBuffer).
			Detail("length-delimited block of %d bytes at position %d, %d remaining", l, start, have).
			Value(l).
			Build()
	}
	p := b.buf[b.pos : b.pos+int(l)]
	b.pos += int(l)
	return p, nil
}

// ReadLengthDelimited reads a varint length and returns a copy of that many bytes.
func (b *Buffer) ReadLengthDelimited() ([]byte, error) {
	p, err := b.ReadLengthDelimitedView()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}
