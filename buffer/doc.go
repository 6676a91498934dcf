// Package buffer provides the growable byte buffer shared by the encoder and decoder.
//
// A Buffer keeps a backing region, a logical length and a cursor. Writes go to
// the cursor and grow the region by doubling its capacity (starting from 64
// bytes) until the write fits, so n bytes of writes cost O(log n) reallocations.
// Reads never run past the logical length: they fail with a truncated_buffer
// error from the errors package instead.
//
//	b := buffer.New()
//	b.WriteVarint(150)
//	b.WriteLengthDelimited([]byte("hello"))
//	b.SetPosition(0)
//	v, _ := b.ReadVarint()           // 150
//	s, _ := b.ReadLengthDelimited()  // "hello"
//
// Buffers are not safe for concurrent use.
package buffer
