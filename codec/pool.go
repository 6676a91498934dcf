package codec

import (
	"sync"

	"github.com/wippyai/wirepb/buffer"
)

// Scratch buffers above this capacity are dropped instead of pooled.
const poolMaxCap = 64 << 10

// scratch buffers for nested messages and packed blocks
var bufPool = sync.Pool{
	New: func() any {
		return buffer.New()
	},
}

func getBuf() *buffer.Buffer {
	return bufPool.Get().(*buffer.Buffer)
}

func putBuf(b *buffer.Buffer) {
	if b == nil || b.Cap() > poolMaxCap {
		return // reject oversized
	}
	b.Reset()
	bufPool.Put(b)
}
