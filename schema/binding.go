package schema

import (
	"fmt"
	"reflect"

	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/internal/reflectx"
)

// Binding connects a record definition to the Go values that represent it.
type Binding interface {
	// Construct builds a value from decoded field values keyed by field name.
	Construct(def *Def, fields map[string]any) (any, error)
	// Deconstruct reads field values from v. ok is false when v is not a
	// value of def.
	Deconstruct(def *Def, v any) (fields map[string]any, ok bool)
}

// Object is the default record value: the definition name plus field values.
type Object struct {
	Fields map[string]any
	Type   string
}

// NewObject is a convenience for building values by hand.
func NewObject(typeName string, fields map[string]any) *Object {
	return &Object{Type: typeName, Fields: fields}
}

func (o *Object) String() string {
	return fmt.Sprintf("%s%v", o.Type, o.Fields)
}

// ObjectBinding represents records as *Object.
type ObjectBinding struct{}

func (ObjectBinding) Construct(def *Def, fields map[string]any) (any, error) {
	return &Object{Type: def.Name, Fields: fields}, nil
}

func (ObjectBinding) Deconstruct(def *Def, v any) (map[string]any, bool) {
	o, ok := v.(*Object)
	if !ok || o == nil || o.Type != def.Name {
		return nil, false
	}
	return o.Fields, true
}

type structBinding struct {
	typ reflect.Type
}

// Struct binds a record to the Go struct T. Fields match by `shape` tag,
// then case-insensitively, then by kebab or snake case. Values are produced
// as T; both T and *T are accepted when encoding.
func Struct[T any]() Binding {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema.Struct: %T is not a struct type", zero))
	}
	return structBinding{typ: typ}
}

func (b structBinding) Construct(def *Def, fields map[string]any) (any, error) {
	out := reflect.New(b.typ).Elem()
	for _, f := range def.Fields {
		sf, ok := reflectx.FindField(b.typ, f.Name)
		if !ok {
			return nil, errors.New(errors.PhaseDecode, errors.KindFieldMissing).
				Path(def.Name, f.Name).
				Type(b.typ.String()).
				Detail("no Go field matches %q", f.Name).
				Build()
		}
		if err := reflectx.Assign(out.FieldByIndex(sf.Index), fields[f.Name]); err != nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
				Path(def.Name, f.Name).
				Type(b.typ.String()).
				Cause(err).
				Build()
		}
	}
	return out.Interface(), nil
}

func (b structBinding) Deconstruct(def *Def, v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Type() != b.typ {
		return nil, false
	}
	fields := make(map[string]any, len(def.Fields))
	for _, f := range def.Fields {
		sf, ok := reflectx.FindField(b.typ, f.Name)
		if !ok {
			return nil, false
		}
		fields[f.Name] = rv.FieldByIndex(sf.Index).Interface()
	}
	return fields, true
}
