package witschema

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/schema"
)

// PayloadField names the field carrying a variant case payload.
const PayloadField = "value"

// Converter turns WIT types into type descriptors. Each *wit.TypeDef is
// converted once, so a definition shared by several functions or fields maps
// to the same *schema.Def.
//
// A Converter is not safe for concurrent use.
type Converter struct {
	reg   *schema.Registry
	types map[*wit.TypeDef]schema.Type
	defs  []*schema.Def
}

// NewConverter creates a converter. When reg is non-nil every named
// definition produced is registered in it.
func NewConverter(reg *schema.Registry) *Converter {
	return &Converter{
		reg:   reg,
		types: make(map[*wit.TypeDef]schema.Type),
	}
}

// Convert converts t with a fresh converter.
func Convert(t wit.Type) (schema.Type, error) {
	return NewConverter(nil).Convert(t)
}

// Parse converts a WIT primitive type name such as "u32" or "string".
func Parse(name string) (schema.Type, error) {
	t, err := wit.ParseType(name)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindSyntax).
			Type(name).
			Cause(err).
			Build()
	}
	return Convert(t)
}

// Defs returns the definitions created so far, in creation order.
func (c *Converter) Defs() []*schema.Def {
	return append([]*schema.Def(nil), c.defs...)
}

// Convert maps t onto a descriptor:
//
//	bool                     -> bool
//	u8..u64, s8..s64         -> int
//	f32, f64                 -> float
//	char, string             -> string
//	list<T>                  -> list[T]
//	tuple<A, B>              -> tuple[A, B]
//	option<T>                -> T | none
//	record                   -> record definition
//	enum                     -> enum definition
//	flags                    -> record of bool fields
//	variant                  -> union of one record per case
//	result<T, E>             -> union with ok and err variants
//	own<R>, borrow<R>        -> int (the handle)
//
// Variant and result cases carrying a payload hold it in a field named
// PayloadField. Unsigned 64-bit values above the int64 range are not
// representable.
func (c *Converter) Convert(t wit.Type) (schema.Type, error) {
	return c.convert(t, nil)
}

func (c *Converter) convert(t wit.Type, path []string) (schema.Type, error) {
	switch t := t.(type) {
	case nil:
		return nil, errors.InvalidData(errors.PhaseLoad, path, "missing type")
	case wit.Bool:
		return schema.Bool, nil
	case wit.U8, wit.U16, wit.U32, wit.U64, wit.S8, wit.S16, wit.S32, wit.S64:
		return schema.Int, nil
	case wit.F32, wit.F64:
		return schema.Float, nil
	case wit.Char, wit.String:
		return schema.String, nil
	case *wit.TypeDef:
		return c.typeDef(t, path)
	}
	return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
		Path(path...).
		Detail("unsupported WIT type %T", t).
		Build()
}

func (c *Converter) typeDef(td *wit.TypeDef, path []string) (schema.Type, error) {
	if t, ok := c.types[td]; ok {
		return t, nil
	}
	name := typeName(td)
	if name != "" {
		path = sub(path, name)
	}

	var (
		t   schema.Type
		def *schema.Def
		err error
	)
	switch kind := td.Kind.(type) {
	case *wit.Record:
		def = c.newDef(name, "record")
		// cached before the fields so a field may refer back to it
		t = schema.Ref(def)
		c.types[td] = t
		err = c.record(def, kind, path)
	case *wit.Flags:
		def = c.newDef(name, "flags")
		for _, f := range kind.Flags {
			def.Fields = append(def.Fields, schema.NewField(f.Name, schema.Bool))
		}
		t = schema.Ref(def)
	case *wit.Enum:
		def = c.newDef(name, "enum")
		for _, ec := range kind.Cases {
			def.Cases = append(def.Cases, schema.EnumCase{Label: ec.Name, Value: ec.Name})
		}
		if len(def.Cases) == 0 {
			return nil, errors.InvalidData(errors.PhaseLoad, path, "enum has no cases")
		}
		t = schema.Ref(def)
	case *wit.Variant:
		def = c.newDef(name, "variant")
		t = schema.Ref(def)
		c.types[td] = t
		for _, vc := range kind.Cases {
			if err = c.addCase(def, vc.Name, vc.Type, path); err != nil {
				break
			}
		}
		if err == nil && len(def.Variants) == 0 {
			err = errors.InvalidData(errors.PhaseLoad, path, "variant has no cases")
		}
	case *wit.Result:
		def = c.newDef(name, "result")
		t = schema.Ref(def)
		c.types[td] = t
		if err = c.addCase(def, "ok", kind.OK, path); err == nil {
			err = c.addCase(def, "err", kind.Err, path)
		}
	case *wit.Option:
		var inner schema.Type
		if inner, err = c.convert(kind.Type, path); err == nil {
			t = schema.Optional(inner)
		}
	case *wit.List:
		var elem schema.Type
		if elem, err = c.convert(kind.Type, sub(path, "[elem]")); err == nil {
			t = schema.ListOf(elem)
		}
	case *wit.Tuple:
		elems := make([]schema.Type, len(kind.Types))
		for i, et := range kind.Types {
			if elems[i], err = c.convert(et, sub(path, fmt.Sprintf("[%d]", i))); err != nil {
				break
			}
		}
		t = schema.TupleOf(elems...)
	case *wit.Own, *wit.Borrow:
		t = schema.Int
	case wit.Type:
		// alias
		t, err = c.convert(kind, path)
	default:
		err = errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type definition %T", kind).
			Build()
	}
	if err == nil && def != nil && c.reg != nil && td.Name != nil {
		err = c.reg.Register(def)
	}
	if err != nil {
		delete(c.types, td)
		return nil, err
	}

	c.types[td] = t
	return t, nil
}

func (c *Converter) record(def *schema.Def, r *wit.Record, path []string) error {
	for _, f := range r.Fields {
		ft, err := c.convert(f.Type, sub(path, f.Name))
		if err != nil {
			return err
		}
		def.Fields = append(def.Fields, schema.NewField(f.Name, ft))
	}
	return nil
}

func (c *Converter) addCase(def *schema.Def, name string, payload wit.Type, path []string) error {
	variant := schema.NewRecord(name)
	if payload != nil {
		pt, err := c.convert(payload, sub(path, name))
		if err != nil {
			return err
		}
		variant.Fields = []schema.Field{schema.NewField(PayloadField, pt)}
	}
	def.AddVariant(variant)
	return nil
}

// newDef creates a definition. Anonymous definitions are named after their
// kind and are never registered.
func (c *Converter) newDef(name, kind string) *schema.Def {
	if name == "" {
		name = kind
	}
	def := &schema.Def{Name: name}
	c.defs = append(c.defs, def)
	return def
}

func sub(path []string, elem string) []string {
	return append(append(make([]string, 0, len(path)+1), path...), elem)
}

func typeName(td *wit.TypeDef) string {
	if td.Name == nil {
		return ""
	}
	return *td.Name
}
