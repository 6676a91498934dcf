package varint

import "math"

// ZigZag maps signed values onto unsigned ones so that small magnitudes stay small:
// 0 -> 0, -1 -> 1, 1 -> 2, -2 -> 3 ...
func ZigZag(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

// InvZigZag reverses ZigZag.
func InvZigZag(zz uint64) int64 {
	return int64(zz>>1) ^ -int64(zz&1)
}

// ZigZag32 is ZigZag restricted to 32-bit values.
func ZigZag32(n int32) uint32 {
	return uint32(n<<1) ^ uint32(n>>31)
}

// InvZigZag32 reverses ZigZag32.
func InvZigZag32(zz uint32) int32 {
	return int32(zz>>1) ^ -int32(zz&1)
}

// Signed32 reinterprets the low 32 bits of a wire value as a signed 32-bit
// integer. Values above MaxInt32 come back negative.
func Signed32(v uint64) int32 {
	return int32(uint32(v & math.MaxUint32))
}

// Signed64 reinterprets a wire value as a signed 64-bit integer.
func Signed64(v uint64) int64 {
	return int64(v)
}
