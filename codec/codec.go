package codec

import (
	"github.com/wippyai/typeshape/decode"
	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/encode"
	"github.com/wippyai/typeshape/schema"
	"github.com/wippyai/typeshape/wire"
)

// Options configures both directions of a codec.
type Options struct {
	// Dialect selects the decoding rules. The zero value means decode.JSON.
	Dialect decode.Dialect
	// Format is the wire format read by Unmarshal and written by Marshal.
	// Empty means wire.JSON.
	Format wire.Format
	// Root is a dotted path selecting the subtree Unmarshal decodes.
	// Empty decodes the whole document.
	Root string
	// EnableAny allows schema.Any in types.
	EnableAny bool
	// TagField and ValueField shape tagged unions; see decode.Options.
	TagField   string
	ValueField string
}

// DefaultOptions returns JSON text in the JSON dialect with flat tagged
// unions.
func DefaultOptions() Options {
	return Options{Dialect: decode.JSON, Format: wire.JSON}
}

func (o Options) normalize() Options {
	if o.Dialect.Format == "" {
		o.Dialect = decode.JSON
	}
	if o.Format == "" {
		o.Format = wire.JSON
	}
	return o
}

// Engine derives codecs. Decoders and encoders are memoized separately, so
// codecs for types sharing definitions share their artifacts.
type Engine struct {
	decoders *derive.Engine[decode.Decoder]
	encoders *derive.Engine[encode.Encoder]
	opts     Options
}

// NewEngine creates an engine with matching decoder and encoder families.
func NewEngine(opts Options) *Engine {
	opts = opts.normalize()
	return &Engine{
		decoders: decode.NewEngine(opts.Dialect, decode.Options{
			EnableAny:  opts.EnableAny,
			TagField:   opts.TagField,
			ValueField: opts.ValueField,
		}),
		encoders: encode.NewEngine(encode.Options{
			EnableAny:  opts.EnableAny,
			TagField:   opts.TagField,
			ValueField: opts.ValueField,
		}),
		opts: opts,
	}
}

// Options returns the engine's options with defaults applied.
func (e *Engine) Options() Options { return e.opts }

// Codec derives the decoder and encoder for t.
func (e *Engine) Codec(t schema.Type) (*Codec, error) {
	dec, err := e.decoders.Derive(t)
	if err != nil {
		return nil, err
	}
	enc, err := e.encoders.Derive(t)
	if err != nil {
		return nil, err
	}
	return &Codec{typ: t, dec: dec, enc: enc, opts: e.opts}, nil
}

// Codec reads and writes values of one type. It is safe for concurrent use.
type Codec struct {
	typ  schema.Type
	dec  decode.Decoder
	enc  encode.Encoder
	opts Options
}

// Type returns the type the codec was derived for.
func (c *Codec) Type() schema.Type { return c.typ }

// Format returns the codec's wire format.
func (c *Codec) Format() wire.Format { return c.opts.Format }

// Decoder returns the derived decoder.
func (c *Codec) Decoder() decode.Decoder { return c.dec }

// Encoder returns the derived encoder.
func (c *Codec) Encoder() encode.Encoder { return c.enc }

// Decode decodes a generic value tree. Failures are *decode.Failure values
// naming the dialect's format.
func (c *Codec) Decode(v any) (any, error) {
	return decode.Read(c.dec, v, c.opts.Dialect.Format)
}

// Encode encodes a typed value to a generic value tree.
func (c *Codec) Encode(v any) (any, error) {
	return c.enc.Encode(v)
}

// Unmarshal parses data in the codec's format and decodes it, or the
// subtree at Options.Root.
func (c *Codec) Unmarshal(data []byte) (any, error) {
	tree, err := c.parse(data)
	if err != nil {
		return nil, err
	}
	return c.Decode(tree)
}

func (c *Codec) parse(data []byte) (any, error) {
	tree, err := wire.Parse(c.opts.Format, data)
	if err != nil {
		return nil, err
	}
	return wire.Select(tree, c.opts.Root)
}

// Marshal encodes v and writes it in the codec's format.
func (c *Codec) Marshal(v any) ([]byte, error) {
	tree, err := c.Encode(v)
	if err != nil {
		return nil, err
	}
	return wire.Marshal(c.opts.Format, tree)
}

// UnmarshalAs is Unmarshal with a typed result.
func UnmarshalAs[T any](c *Codec, data []byte) (T, error) {
	var zero T
	tree, err := c.parse(data)
	if err != nil {
		return zero, err
	}
	return decode.ReadAs[T](c.dec, tree, c.opts.Dialect.Format)
}
