// Package varint implements base-128 varints, zig-zag transforms and field tags
// as they appear on the Protocol Buffers wire.
package varint

import (
	"errors"
	"math/bits"
)

// MaxLen is the longest varint encoding of a 64-bit value.
const MaxLen = 10

var (
	// ErrTruncated is returned when input ends before the final varint byte.
	ErrTruncated = errors.New("varint: truncated")
	// ErrOverflow is returned when a varint does not fit in 64 bits.
	ErrOverflow = errors.New("varint: overflow")
)

const (
	errCodeTruncated = -1
	errCodeOverflow  = -2
)

// Append appends v as a varint. Negative signed values must be converted to
// their two's-complement uint64 pattern first, which always takes ten bytes.
func Append(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// Consume parses a varint from the front of b. It returns the value and the
// number of bytes consumed; n is negative on error, see ParseError.
func Consume(b []byte) (v uint64, n int) {
	var shift uint
	for i := 0; i < len(b); i++ {
		c := b[i]
		if i == MaxLen-1 && c > 1 {
			return 0, errCodeOverflow
		}
		v |= uint64(c&0x7f) << shift
		if c < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, errCodeTruncated
}

// ParseError converts a negative length returned by Consume into an error.
func ParseError(n int) error {
	switch {
	case n >= 0:
		return nil
	case n == errCodeOverflow:
		return ErrOverflow
	default:
		return ErrTruncated
	}
}

// Size returns the encoded length of v.
func Size(v uint64) int {
	// 1 + (bits-1)/7 without a branch for v == 0
	return int(9*uint32(bits.Len64(v))+64) / 64
}
