package decode

import (
	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/schema"
)

// Options configures the decoder family.
type Options struct {
	// EnableAny registers a pass-through decoder for schema.Any.
	EnableAny bool
	// TagField names the discriminator of tagged unions. Empty uses the
	// union's own name.
	TagField string
	// ValueField nests the variant payload under this field. Empty keeps
	// the payload flat, next to the tag.
	ValueField string
}

// DefaultOptions returns flat tagged unions discriminated by union name,
// with schema.Any disabled.
func DefaultOptions() Options {
	return Options{}
}

// Family builds decoders for one dialect. It implements
// derive.Combinators[Decoder].
type Family struct {
	prims   map[schema.Primitive]Decoder
	opts    Options
	dialect Dialect
}

var _ derive.Combinators[Decoder] = (*Family)(nil)

// NewFamily creates a family with the built-in primitive decoders
// registered.
func NewFamily(dialect Dialect, opts Options) *Family {
	f := &Family{
		prims:   make(map[schema.Primitive]Decoder),
		opts:    opts,
		dialect: dialect,
	}
	f.Register(schema.String, String{Dialect: dialect})
	f.Register(schema.Decimal, Number{Dialect: dialect})
	f.Register(schema.Int, Int{Dialect: dialect})
	f.Register(schema.Float, Float{Dialect: dialect})
	f.Register(schema.Bool, Bool{Dialect: dialect})
	f.Register(schema.Date, Date{Dialect: dialect})
	f.Register(schema.DateTime, DateTime{Dialect: dialect})
	f.Register(schema.None, None{})
	if opts.EnableAny {
		f.Register(schema.Any, Any{})
	}
	return f
}

// NewEngine creates a derivation engine over a new family.
func NewEngine(dialect Dialect, opts Options) *derive.Engine[Decoder] {
	return derive.New[Decoder](NewFamily(dialect, opts))
}

// Dialect returns the family's dialect.
func (f *Family) Dialect() Dialect { return f.dialect }

// Register sets the decoder for a primitive, replacing any previous one.
// Registration must happen before derivation.
func (f *Family) Register(p schema.Primitive, d Decoder) {
	f.prims[p] = d
}

func (f *Family) Primitive(p schema.Primitive) (Decoder, bool) {
	d, ok := f.prims[p]
	return d, ok
}

func (f *Family) NamedProduct(def *schema.Def, fields []derive.FieldArtifact[Decoder]) (Decoder, error) {
	out := make([]Field, len(fields))
	for i, fa := range fields {
		out[i] = Field{Name: fa.Name, Decoder: fa.Artifact, Default: fa.Default}
	}
	return &Object{
		Construct: def.Construct,
		Name:      def.Name,
		Fields:    out,
		Dialect:   f.dialect,
	}, nil
}

func (f *Family) UnnamedProduct(_ *schema.Tuple, elems []Decoder) (Decoder, error) {
	return &Tuple{Elems: elems, Dialect: f.dialect}, nil
}

func (f *Family) NamedSum(def *schema.Def, branches []derive.Branch[Decoder]) (Decoder, error) {
	tagField := f.opts.TagField
	if tagField == "" {
		tagField = def.Name
	}
	if f.opts.ValueField == "" {
		for _, b := range branches {
			n, ok := b.Type.(*schema.Named)
			if !ok {
				continue
			}
			if _, clash := n.Def.Field(tagField); clash {
				return nil, errors.New(errors.PhaseDerive, errors.KindDuplicate).
					Type(b.Tag).
					Detail("variant field %s collides with the tag field", tagField).
					Build()
			}
		}
	}

	out := make([]Branch, len(branches))
	for i, b := range branches {
		out[i] = Branch{Tag: b.Tag, Decoder: b.Artifact}
	}
	return &Tagged{
		TagField:   tagField,
		ValueField: f.opts.ValueField,
		Branches:   out,
		Dialect:    f.dialect,
	}, nil
}

func (f *Family) UnnamedSum(_ *schema.Union, branches []derive.Branch[Decoder]) (Decoder, error) {
	out := make([]Decoder, len(branches))
	for i, b := range branches {
		out[i] = b.Artifact
	}
	return &Priority{Decoders: out}, nil
}

func (f *Family) Optional(inner Decoder) Decoder {
	return &Optional{Inner: inner}
}

func (f *Family) List(elem Decoder) Decoder {
	return &List{Elem: elem, Dialect: f.dialect}
}

func (f *Family) Dict(key, _ schema.Type, ka, va Decoder) (Decoder, error) {
	if p, ok := key.(schema.Primitive); ok && p == schema.String {
		return &StringDict{Value: va, Dialect: f.dialect}, nil
	}
	return &EnumDict{Key: ka, Value: va, Dialect: f.dialect}, nil
}

func (f *Family) Enum(def *schema.Def, cases []schema.EnumCase) (Decoder, error) {
	return &Enum{Name: def.Name, Cases: cases, Dialect: f.dialect}, nil
}

func (f *Family) Deferred(cell *derive.Cell[Decoder]) Decoder {
	return &Deferred{Cell: cell}
}
