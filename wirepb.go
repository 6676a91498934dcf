package wirepb

import (
	"sync"

	"github.com/wippyai/wirepb/codec"
	"github.com/wippyai/wirepb/schema"
)

var (
	defaultOnce sync.Once
	defaultEnc  *codec.Encoder
	defaultDec  *codec.Decoder
)

func defaults() (*codec.Encoder, *codec.Decoder) {
	defaultOnce.Do(func() {
		reg := schema.Default()
		defaultEnc = codec.NewEncoder(codec.WithRegistry(reg))
		defaultDec = codec.NewDecoder(codec.WithRegistry(reg))
	})
	return defaultEnc, defaultDec
}

// Register adds a message type to the default registry.
func Register(name string, fields ...schema.Field) error {
	return schema.Register(name, fields...)
}

// Freeze resolves the default registry's references and makes it read-only.
func Freeze() error {
	return schema.Default().Freeze()
}

// Encode encodes value as typeName using the default registry.
// value may be a *codec.Message, a map[string]any or a struct.
func Encode(typeName string, value any) ([]byte, error) {
	enc, _ := defaults()
	return enc.Encode(typeName, value)
}

// Decode decodes data as a typeName message using the default registry.
func Decode(typeName string, data []byte) (*codec.Message, error) {
	_, dec := defaults()
	return dec.Decode(typeName, data)
}

// Marshal encodes the struct v as typeName using the default registry.
func Marshal(typeName string, v any) ([]byte, error) {
	enc, _ := defaults()
	return enc.Marshal(typeName, v)
}

// Unmarshal decodes data as typeName into out using the default registry.
// out is a pointer to a struct, a *codec.Message or a *map[string]any.
func Unmarshal(typeName string, data []byte, out any) error {
	_, dec := defaults()
	return dec.Unmarshal(typeName, data, out)
}
