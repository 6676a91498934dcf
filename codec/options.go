package codec

import (
	"github.com/wippyai/wirepb/buffer"
	"github.com/wippyai/wirepb/charset"
	"github.com/wippyai/wirepb/schema"
	"go.uber.org/zap"
)

// DefaultRecursionLimit bounds message nesting on encode and decode.
const DefaultRecursionLimit = 100

// Options configures an Encoder or Decoder.
type Options struct {
	// Registry resolves type names. Defaults to schema.Default().
	Registry *schema.Registry
	// Logger receives debug records for failed calls. Defaults to the package logger.
	Logger *zap.Logger
	// Charset applies to string fields that do not name one. Defaults to UTF-8.
	Charset string
	// RecursionLimit is the deepest message nesting allowed.
	RecursionLimit int
	// InitialSize is the starting capacity of output buffers.
	InitialSize int
	// StandardSFixed writes sfixed32/sfixed64 as the two's complement of the
	// value, as protoc-generated code does. By default they carry the zig-zag
	// of the value in fixed width.
	StandardSFixed bool
}

// Option adjusts Options.
type Option func(*Options)

func WithRegistry(reg *schema.Registry) Option {
	return func(o *Options) { o.Registry = reg }
}

func WithCharset(cs string) Option {
	return func(o *Options) { o.Charset = cs }
}

func WithRecursionLimit(n int) Option {
	return func(o *Options) { o.RecursionLimit = n }
}

func WithInitialSize(n int) Option {
	return func(o *Options) { o.InitialSize = n }
}

func WithStandardSFixed(on bool) Option {
	return func(o *Options) { o.StandardSFixed = on }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func newOptions(opts []Option) Options {
	o := Options{
		Charset:        charset.UTF8,
		RecursionLimit: DefaultRecursionLimit,
		InitialSize:    buffer.DefaultSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Registry == nil {
		o.Registry = schema.Default()
	}
	if o.RecursionLimit <= 0 {
		o.RecursionLimit = DefaultRecursionLimit
	}
	if o.InitialSize <= 0 {
		o.InitialSize = buffer.DefaultSize
	}
	return o
}

func (o *Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}
