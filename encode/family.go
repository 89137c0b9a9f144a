package encode

import (
	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/schema"
)

// Options configures the encoder family. TagField and ValueField must match
// the decoder options for encoded values to decode again.
type Options struct {
	EnableAny  bool
	TagField   string
	ValueField string
}

// DefaultOptions mirrors decode.DefaultOptions.
func DefaultOptions() Options {
	return Options{}
}

// Family builds encoders. It implements derive.Combinators[Encoder].
type Family struct {
	prims map[schema.Primitive]Encoder
	opts  Options
}

var _ derive.Combinators[Encoder] = (*Family)(nil)

// NewFamily creates a family with the built-in primitive encoders
// registered.
func NewFamily(opts Options) *Family {
	f := &Family{
		prims: map[schema.Primitive]Encoder{
			schema.String:   String{},
			schema.Int:      Int{},
			schema.Float:    Float{},
			schema.Bool:     Bool{},
			schema.Decimal:  Decimal{},
			schema.Date:     Date{},
			schema.DateTime: DateTime{},
			schema.None:     None{},
		},
		opts: opts,
	}
	if opts.EnableAny {
		f.prims[schema.Any] = Any{}
	}
	return f
}

// NewEngine creates a derivation engine over a new family.
func NewEngine(opts Options) *derive.Engine[Encoder] {
	return derive.New[Encoder](NewFamily(opts))
}

// Register sets the encoder for a primitive. Registration must happen
// before derivation.
func (f *Family) Register(p schema.Primitive, e Encoder) {
	f.prims[p] = e
}

func (f *Family) Primitive(p schema.Primitive) (Encoder, bool) {
	e, ok := f.prims[p]
	return e, ok
}

func (f *Family) NamedProduct(def *schema.Def, fields []derive.FieldArtifact[Encoder]) (Encoder, error) {
	out := make([]Field, len(fields))
	for i, fa := range fields {
		out[i] = Field{Name: fa.Name, Encoder: fa.Artifact}
	}
	return &Object{Name: def.Name, Deconstruct: def.Deconstruct, Fields: out}, nil
}

func (f *Family) UnnamedProduct(_ *schema.Tuple, elems []Encoder) (Encoder, error) {
	return &Tuple{Elems: elems}, nil
}

func (f *Family) NamedSum(def *schema.Def, branches []derive.Branch[Encoder]) (Encoder, error) {
	tagField := f.opts.TagField
	if tagField == "" {
		tagField = def.Name
	}
	out := make([]Branch, len(branches))
	for i, b := range branches {
		owns := func(any) bool { return false }
		if n, ok := b.Type.(*schema.Named); ok {
			owns = n.Def.Owns
		}
		out[i] = Branch{Tag: b.Tag, Owns: owns, Encoder: b.Artifact}
	}
	return &Tagged{Name: def.Name, TagField: tagField, ValueField: f.opts.ValueField, Branches: out}, nil
}

func (f *Family) UnnamedSum(_ *schema.Union, branches []derive.Branch[Encoder]) (Encoder, error) {
	encs := make([]Encoder, len(branches))
	types := make([]string, len(branches))
	for i, b := range branches {
		encs[i] = b.Artifact
		types[i] = b.Tag
	}
	return &Priority{Encoders: encs, Types: types}, nil
}

func (f *Family) Optional(inner Encoder) Encoder {
	return &Optional{Inner: inner}
}

func (f *Family) List(elem Encoder) Encoder {
	return &List{Elem: elem}
}

func (f *Family) Dict(key, _ schema.Type, ka, va Encoder) (Encoder, error) {
	if p, ok := key.(schema.Primitive); ok && p == schema.String {
		return &StringDict{Value: va}, nil
	}
	return &EnumDict{Key: ka, Value: va}, nil
}

func (f *Family) Enum(def *schema.Def, cases []schema.EnumCase) (Encoder, error) {
	return &Enum{Name: def.Name, Cases: cases}, nil
}

func (f *Family) Deferred(cell *derive.Cell[Encoder]) Encoder {
	return &Deferred{Cell: cell}
}
