package metrics

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/internal/reflectx"
	"github.com/wippyai/typeshape/schema"
)

// Family builds exporters. It implements derive.Combinators[Exporter].
type Family struct {
	prims map[schema.Primitive]Exporter
}

var _ derive.Combinators[Exporter] = (*Family)(nil)

// NewFamily creates a family with the built-in primitive exporters. Numbers
// export as leaves; strings, booleans and dates as tags. Untyped values
// export by their runtime type.
func NewFamily() *Family {
	return &Family{prims: map[schema.Primitive]Exporter{
		schema.Int:      Value{},
		schema.Float:    Value{},
		schema.Decimal:  Value{},
		schema.String:   String{},
		schema.Bool:     Bool{},
		schema.Date:     Date{},
		schema.DateTime: DateTime{},
		schema.None:     None{},
		schema.Any:      Any{},
	}}
}

// NewEngine creates a derivation engine over a new family.
func NewEngine() *derive.Engine[Exporter] {
	return derive.New[Exporter](NewFamily())
}

// Register sets the exporter for a primitive.
func (f *Family) Register(p schema.Primitive, e Exporter) {
	f.prims[p] = e
}

func (f *Family) Primitive(p schema.Primitive) (Exporter, bool) {
	e, ok := f.prims[p]
	return e, ok
}

func (f *Family) NamedProduct(def *schema.Def, fields []derive.FieldArtifact[Exporter]) (Exporter, error) {
	out := make([]Field, len(fields))
	for i, fa := range fields {
		out[i] = Field{Name: fa.Name, Exporter: fa.Artifact}
	}
	return &Object{Name: def.Name, Deconstruct: def.Deconstruct, Fields: out}, nil
}

func (f *Family) UnnamedProduct(_ *schema.Tuple, elems []Exporter) (Exporter, error) {
	return &Tuple{Elems: elems}, nil
}

func (f *Family) NamedSum(def *schema.Def, branches []derive.Branch[Exporter]) (Exporter, error) {
	out := make([]Branch, len(branches))
	for i, b := range branches {
		out[i] = Branch{Tag: b.Tag, Exporter: b.Artifact, Owns: func(v any) bool { return accepts(b.Type, v) }}
	}
	return &Tagged{Postfix: "_" + def.Name, Branches: out}, nil
}

func (f *Family) UnnamedSum(_ *schema.Union, branches []derive.Branch[Exporter]) (Exporter, error) {
	out := make([]Alternative, len(branches))
	for i, b := range branches {
		out[i] = Alternative{Exporter: b.Artifact, Accepts: func(v any) bool { return accepts(b.Type, v) }}
	}
	return &Priority{Alternatives: out}, nil
}

func (f *Family) Optional(inner Exporter) Exporter {
	return &Optional{Inner: inner}
}

func (f *Family) List(elem Exporter) Exporter {
	return &List{Elem: elem}
}

func (f *Family) Dict(key, _ schema.Type, ka, va Exporter) (Exporter, error) {
	if p, ok := key.(schema.Primitive); ok && p == schema.String {
		return &Dict{Value: va}, nil
	}
	return &Dict{Key: ka, Value: va}, nil
}

func (f *Family) Enum(def *schema.Def, cases []schema.EnumCase) (Exporter, error) {
	return &Enum{Name: def.Name, Cases: cases}, nil
}

func (f *Family) Deferred(cell *derive.Cell[Exporter]) Exporter {
	return &Deferred{Cell: cell}
}

// accepts is a shallow membership test of v against a closed type. It only
// looks as deep as needed to tell union branches apart.
func accepts(t schema.Type, v any) bool {
	switch tt := t.(type) {
	case schema.Primitive:
		switch tt {
		case schema.Bool:
			_, ok := reflectx.Bool(v)
			return ok
		case schema.String:
			_, ok := reflectx.String(v)
			return ok
		case schema.Int:
			_, ok := reflectx.Int(v)
			return ok
		case schema.Float:
			_, ok := reflectx.Float(v)
			return ok
		case schema.Decimal:
			_, ok := v.(decimal.Decimal)
			return ok
		case schema.Date, schema.DateTime:
			_, ok := v.(time.Time)
			return ok
		case schema.None:
			return v == nil
		case schema.Any:
			return true
		}
	case *schema.Union:
		for _, b := range tt.Branches {
			if accepts(b, v) {
				return true
			}
		}
	case *schema.List:
		_, ok := reflectx.Seq(v)
		return ok
	case *schema.Tuple:
		seq, ok := reflectx.Seq(v)
		return ok && len(seq) == len(tt.Elems)
	case *schema.Dict:
		return v != nil && reflect.TypeOf(v).Kind() == reflect.Map
	case *schema.Named:
		if tt.Def.IsEnum() {
			for _, c := range tt.Def.Cases {
				if reflect.DeepEqual(c.Value, v) {
					return true
				}
			}
			return false
		}
		return tt.Def.Owns(v)
	}
	return false
}
