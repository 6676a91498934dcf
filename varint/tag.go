package varint

// Field number bounds of the wire format.
const (
	MinFieldNumber      = 1
	MaxFieldNumber      = 1<<29 - 1
	FirstReservedNumber = 19000
	LastReservedNumber  = 19999
)

// EncodeTag composes field_number<<3 | wire_kind.
func EncodeTag(num int32, wireKind uint8) uint64 {
	return uint64(num)<<3 | uint64(wireKind&7)
}

// DecodeTag splits a tag into field number and wire kind. Numbers that
// overflow int32 are reported as -1.
func DecodeTag(tag uint64) (int32, uint8) {
	num := tag >> 3
	if num > MaxFieldNumber {
		return -1, uint8(tag & 7)
	}
	return int32(num), uint8(tag & 7)
}
