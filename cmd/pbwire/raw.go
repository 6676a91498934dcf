package main

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/richardartoul/molecule"
	mcodec "github.com/richardartoul/molecule/src/codec"
	"github.com/wippyai/wirepb/varint"
)

// maxRawDepth stops the nested-message guess in dumpRaw.
const maxRawDepth = 32

// dumpRaw prints every field of data without a schema. Length-delimited
// values that parse cleanly as a message are expanded, others are shown as
// text or hex.
func (p *printer) dumpRaw(data []byte, depth int) error {
	return molecule.MessageEach(mcodec.NewBuffer(data), func(fieldNum int32, value molecule.Value) (bool, error) {
		head := p.style(nameStyle, "#"+strconv.Itoa(int(fieldNum)))
		switch value.WireType {
		case mcodec.WireVarint:
			p.line(depth, "%s %s = %s", head, p.style(typeStyle, "varint"),
				p.style(valueStyle, fmt.Sprintf("%d (zigzag %d)", value.Number, varint.InvZigZag(value.Number))))
		case mcodec.WireFixed32:
			p.line(depth, "%s %s = %s", head, p.style(typeStyle, "fixed32"),
				p.style(valueStyle, fmt.Sprintf("0x%08x (float %g)", uint32(value.Number), math.Float32frombits(uint32(value.Number)))))
		case mcodec.WireFixed64:
			p.line(depth, "%s %s = %s", head, p.style(typeStyle, "fixed64"),
				p.style(valueStyle, fmt.Sprintf("0x%016x (double %g)", value.Number, math.Float64frombits(value.Number))))
		case mcodec.WireBytes:
			b, err := value.AsBytesUnsafe()
			if err != nil {
				return false, err
			}
			if depth < maxRawDepth && len(b) > 0 && !isText(b) && looksLikeMessage(b) {
				p.line(depth, "%s %s {", head, p.style(typeStyle, "message"))
				if err := p.dumpRaw(b, depth+1); err != nil {
					return false, err
				}
				p.line(depth, "}")
				return true, nil
			}
			p.line(depth, "%s %s = %s", head, p.style(typeStyle, "bytes"), p.style(valueStyle, bytesText(b)))
		}
		return true, nil
	})
}

func isText(b []byte) bool {
	return utf8.Valid(b) && isPrintable(b)
}

// looksLikeMessage reports whether b parses as a sequence of well-formed
// fields with plausible numbers.
func looksLikeMessage(b []byte) bool {
	err := molecule.MessageEach(mcodec.NewBuffer(b), func(fieldNum int32, _ molecule.Value) (bool, error) {
		if fieldNum < varint.MinFieldNumber || fieldNum > varint.MaxFieldNumber {
			return false, fmt.Errorf("field number %d", fieldNum)
		}
		return true, nil
	})
	return err == nil
}
