// Package charset converts between Go strings and their byte form in a named
// character set. UTF-8 is handled natively and strictly; other charsets are
// resolved by their WHATWG label through golang.org/x/text.
package charset

import (
	"bytes"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/wippyai/wirepb/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// UTF8 is the default charset name.
const UTF8 = "utf8"

// Codec converts text to and from one charset.
type Codec interface {
	Name() string
	Encode(s string) ([]byte, error)
	Decode(b []byte) (string, error)
}

var codecs sync.Map // normalized name -> Codec

// Lookup returns the codec for name. The empty name, "utf8" and "utf-8"
// select strict UTF-8. Unknown names fail with invalid_encoding.
func Lookup(name string) (Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := codecs.Load(key); ok {
		return c.(Codec), nil
	}

	var c Codec
	switch key {
	case "", "utf8", "utf-8":
		c = utf8Codec{}
	default:
		enc, err := htmlindex.Get(key)
		if err != nil {
			return nil, errors.New("", errors.KindInvalidEncoding).
				Detail("unknown charset %q", name).
				Cause(err).
				Build()
		}
		c = textCodec{name: key, enc: enc}
	}

	actual, _ := codecs.LoadOrStore(key, c)
	return actual.(Codec), nil
}

// TextToBytes encodes s in charset cs.
func TextToBytes(s, cs string) ([]byte, error) {
	c, err := Lookup(cs)
	if err != nil {
		return nil, err
	}
	return c.Encode(s)
}

// BytesToText decodes b from charset cs.
func BytesToText(b []byte, cs string) (string, error) {
	c, err := Lookup(cs)
	if err != nil {
		return "", err
	}
	return c.Decode(b)
}

type utf8Codec struct{}

func (utf8Codec) Name() string { return UTF8 }

func (utf8Codec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errors.InvalidUTF8("", nil, []byte(s))
	}
	return []byte(s), nil
}

func (utf8Codec) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8("", nil, b)
	}
	return string(b), nil
}

// textCodec wraps an x/text encoding. Encoding fails on runes the charset
// cannot represent. x/text decodes invalid sequences to U+FFFD, so a
// replacement rune the input does not itself encode is reported as an error.
type textCodec struct {
	enc  encoding.Encoding
	name string
}

func (c textCodec) Name() string { return c.name }

func (c textCodec) Encode(s string) ([]byte, error) {
	b, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.New("", errors.KindInvalidEncoding).
			Detail("charset %q cannot encode text", c.name).
			Cause(err).
			Build()
	}
	return b, nil
}

func (c textCodec) Decode(b []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.New("", errors.KindInvalidEncoding).
			Detail("charset %q cannot decode %d bytes", c.name, len(b)).
			Cause(err).
			Build()
	}
	if bytes.ContainsRune(out, utf8.RuneError) && !c.encodesReplacement(b) {
		return "", errors.New("", errors.KindInvalidEncoding).
			Detail("malformed %s text", c.name).
			Value(bytes.Clone(b)).
			Build()
	}
	return string(out), nil
}

// encodesReplacement reports whether b holds the charset's own encoding of U+FFFD.
func (c textCodec) encodesReplacement(b []byte) bool {
	r, err := c.enc.NewEncoder().Bytes([]byte(string(utf8.RuneError)))
	return err == nil && bytes.Contains(b, r)
}
