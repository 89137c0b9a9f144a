package schema

// Def is a named definition: a record, a sealed union or an enum.
//
// A definition with variants is a tagged union; each variant is itself a
// definition and its discriminator is the variant's Name. A definition with
// cases and no fields is an enum. Anything else is a record, including a
// record with no fields.
//
// Generic definitions list their parameter names in Params; field types refer
// to them with Param. Variants of a generic union resolve their own Params by
// name against the union's bindings.
type Def struct {
	Binding  Binding
	Name     string
	Params   []string
	Fields   []Field
	Variants []*Def
	Cases    []EnumCase
}

// Field is one named component of a record.
type Field struct {
	Default *Default
	Type    Type
	Name    string
}

// Default is a field default: either a literal value or a factory invoked
// once per decoded value.
type Default struct {
	value   any
	factory func() any
}

// EnumCase pairs the wire label of an enum case with the value it decodes to.
type EnumCase struct {
	Value any
	Label string
}

// NewRecord creates a record definition.
func NewRecord(name string, fields ...Field) *Def {
	return &Def{Name: name, Fields: fields}
}

// NewUnion creates a sealed union over an explicit variant list.
func NewUnion(name string, variants ...*Def) *Def {
	return &Def{Name: name, Variants: variants}
}

// NewEnum creates an enum whose values are its labels.
func NewEnum(name string, labels ...string) *Def {
	cases := make([]EnumCase, len(labels))
	for i, l := range labels {
		cases[i] = EnumCase{Label: l, Value: l}
	}
	return &Def{Name: name, Cases: cases}
}

// NewEnumCases creates an enum with explicit values.
func NewEnumCases(name string, cases ...EnumCase) *Def {
	return &Def{Name: name, Cases: cases}
}

// Generic declares the definition's type parameters.
func (d *Def) Generic(params ...string) *Def {
	d.Params = params
	return d
}

// SetFields replaces the field list. Useful for self-referential records,
// which must exist before their fields can mention them.
func (d *Def) SetFields(fields ...Field) *Def {
	d.Fields = fields
	return d
}

// AddVariant appends variants to a union.
func (d *Def) AddVariant(variants ...*Def) *Def {
	d.Variants = append(d.Variants, variants...)
	return d
}

// Bind attaches the binding used to construct and inspect values.
func (d *Def) Bind(b Binding) *Def {
	d.Binding = b
	return d
}

// IsUnion reports whether the definition is a tagged union.
func (d *Def) IsUnion() bool { return len(d.Variants) > 0 }

// IsEnum reports whether the definition is an enum.
func (d *Def) IsEnum() bool { return len(d.Variants) == 0 && len(d.Fields) == 0 && len(d.Cases) > 0 }

// IsRecord reports whether the definition is a record.
func (d *Def) IsRecord() bool { return !d.IsUnion() && !d.IsEnum() }

// Field looks a field up by name.
func (d *Def) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Labels lists the enum labels in declared order.
func (d *Def) Labels() []string {
	out := make([]string, len(d.Cases))
	for i, c := range d.Cases {
		out[i] = c.Label
	}
	return out
}

// VariantNames lists the discriminators of a union in declared order.
func (d *Def) VariantNames() []string {
	out := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		out[i] = v.Name
	}
	return out
}

// Owns reports whether v was built by this definition or, for unions, by
// any of its variants.
func (d *Def) Owns(v any) bool {
	if d.IsUnion() {
		for _, variant := range d.Variants {
			if variant.Owns(v) {
				return true
			}
		}
		return false
	}
	_, ok := d.binding().Deconstruct(d, v)
	return ok
}

// Construct builds a value from decoded field values.
func (d *Def) Construct(fields map[string]any) (any, error) {
	return d.binding().Construct(d, fields)
}

// Deconstruct reads field values back out of a value built by this definition.
func (d *Def) Deconstruct(v any) (map[string]any, bool) {
	return d.binding().Deconstruct(d, v)
}

func (d *Def) binding() Binding {
	if d.Binding == nil {
		return ObjectBinding{}
	}
	return d.Binding
}

// NewField creates a required field.
func NewField(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// WithDefault returns a copy of the field defaulting to v.
func (f Field) WithDefault(v any) Field {
	f.Default = &Default{value: v}
	return f
}

// WithFactory returns a copy of the field whose default is produced by fn.
func (f Field) WithFactory(fn func() any) Field {
	f.Default = &Default{factory: fn}
	return f
}

// Get yields the default value, calling the factory if there is one.
func (d *Default) Get() any {
	if d.factory != nil {
		return d.factory()
	}
	return d.value
}
