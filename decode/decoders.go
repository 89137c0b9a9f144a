package decode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/internal/reflectx"
	"github.com/wippyai/typeshape/schema"
)

// Field is one record field and how to decode it.
type Field struct {
	Decoder Decoder
	Default *schema.Default
	Name    string
}

// Object decodes a record. Every field is attempted; all failures are
// reported, each located at its field.
type Object struct {
	Construct func(fields map[string]any) (any, error)
	Name      string
	Fields    []Field
	Dialect   Dialect
}

func (d *Object) AcceptsAbsent() bool { return false }

func (d *Object) Decode(v any) (any, Errors) {
	obj, ok := v.(map[string]any)
	if !ok {
		return fail("Expected a %s but received something else.", d.Dialect.Object)
	}

	decoded := make(map[string]any, len(d.Fields))
	var errs Errors
	for _, f := range d.Fields {
		raw, present := d.Dialect.lookup(obj, f.Name)
		if !present || raw == nil {
			switch {
			case f.Decoder.AcceptsAbsent():
				if !d.Dialect.AbsentDecodesNone {
					decoded[f.Name] = nil
					continue
				}
				out, ferrs := f.Decoder.Decode(nil)
				if len(ferrs) > 0 {
					errs = append(errs, ferrs.InField(f.Name)...)
					continue
				}
				decoded[f.Name] = out
			case f.Default != nil:
				decoded[f.Name] = f.Default.Get()
			default:
				errs = append(errs, InField{Field: f.Name, Err: Leaf{Msg: "Non-optional field was not found"}})
			}
			continue
		}

		out, ferrs := f.Decoder.Decode(raw)
		if len(ferrs) > 0 {
			errs = append(errs, ferrs.InField(f.Name)...)
			continue
		}
		decoded[f.Name] = out
	}

	if len(errs) > 0 {
		return nil, errs
	}
	val, err := d.Construct(decoded)
	if err != nil {
		return fail("Could not construct %s: %v", d.Name, err)
	}
	return val, nil
}

// Tuple decodes a fixed-size array positionally.
type Tuple struct {
	Elems   []Decoder
	Dialect Dialect
}

func (d *Tuple) AcceptsAbsent() bool { return false }

func (d *Tuple) Decode(v any) (any, Errors) {
	arr, ok := reflectx.Seq(v)
	if !ok {
		return fail("Expected a %s but received something else.", d.Dialect.Array)
	}
	if len(arr) != len(d.Elems) {
		return fail("Expected a %s of size %d but received one of size %d.", d.Dialect.Array, len(d.Elems), len(arr))
	}

	out := make([]any, len(arr))
	var errs Errors
	for i, elem := range d.Elems {
		val, eerrs := elem.Decode(arr[i])
		if len(eerrs) > 0 {
			errs = append(errs, eerrs.InIndex(i)...)
			continue
		}
		out[i] = val
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// Branch is one alternative of a tagged union.
type Branch struct {
	Decoder Decoder
	Tag     string
}

// Tagged decodes a union discriminated by a string tag field. With an empty
// ValueField the payload shares the object with the tag; otherwise the
// payload is nested under ValueField.
type Tagged struct {
	TagField   string
	ValueField string
	Branches   []Branch
	Dialect    Dialect
}

func (d *Tagged) AcceptsAbsent() bool { return false }

func (d *Tagged) Decode(v any) (any, Errors) {
	obj, ok := v.(map[string]any)
	if !ok {
		return fail("Expected a %s but received something else.", d.Dialect.Object)
	}

	atTag := func(format string, args ...any) (any, Errors) {
		return nil, Errors{InField{Field: d.TagField, Err: Leaf{Msg: fmt.Sprintf(format, args...)}}}
	}

	raw := obj[d.TagField]
	if raw == nil {
		return atTag("Required tag field not found.")
	}
	tag, ok := raw.(string)
	if !ok {
		return atTag("Expected a %s string for tag field but received something else.", d.Dialect.Format)
	}

	for _, b := range d.Branches {
		if b.Tag != tag {
			continue
		}
		if d.ValueField == "" {
			return b.Decoder.Decode(obj)
		}
		out, errs := b.Decoder.Decode(obj[d.ValueField])
		if len(errs) > 0 {
			return nil, errs.InField(d.ValueField)
		}
		return out, nil
	}

	tags := make([]string, len(d.Branches))
	for i, b := range d.Branches {
		tags[i] = b.Tag
	}
	return atTag("Unknown tag value %s (possible values are: %s).", tag, strings.Join(tags, ", "))
}

// Priority tries each decoder in order and keeps the first success. When all
// fail, every branch's errors are returned.
type Priority struct {
	Decoders []Decoder
}

func (d *Priority) AcceptsAbsent() bool { return false }

func (d *Priority) Decode(v any) (any, Errors) {
	var errs Errors
	for _, inner := range d.Decoders {
		out, ierrs := inner.Decode(v)
		if len(ierrs) == 0 {
			return out, nil
		}
		errs = append(errs, ierrs...)
	}
	if len(errs) == 0 {
		return fail("No alternatives to decode with.")
	}
	return nil, errs
}

// Optional maps null to nil and otherwise defers to Inner.
type Optional struct {
	Inner Decoder
}

func (d *Optional) AcceptsAbsent() bool { return true }

func (d *Optional) Decode(v any) (any, Errors) {
	if v == nil {
		return nil, nil
	}
	return d.Inner.Decode(v)
}

// ErrorAsDefault swallows Inner's errors and yields Default instead.
type ErrorAsDefault struct {
	Default any
	Inner   Decoder
}

func (d *ErrorAsDefault) AcceptsAbsent() bool { return d.Inner.AcceptsAbsent() }

func (d *ErrorAsDefault) Decode(v any) (any, Errors) {
	out, errs := d.Inner.Decode(v)
	if len(errs) > 0 {
		return d.Default, nil
	}
	return out, nil
}

// Mapped transforms a successfully decoded value.
type Mapped struct {
	Inner Decoder
	Map   func(any) any
}

func (d *Mapped) AcceptsAbsent() bool { return d.Inner.AcceptsAbsent() }

func (d *Mapped) Decode(v any) (any, Errors) {
	out, errs := d.Inner.Decode(v)
	if len(errs) > 0 {
		return nil, errs
	}
	return d.Map(out), nil
}

// FlatMapped transforms a decoded value with a step that may itself fail.
type FlatMapped struct {
	Inner Decoder
	Map   func(any) (any, Errors)
}

func (d *FlatMapped) AcceptsAbsent() bool { return d.Inner.AcceptsAbsent() }

func (d *FlatMapped) Decode(v any) (any, Errors) {
	out, errs := d.Inner.Decode(v)
	if len(errs) > 0 {
		return nil, errs
	}
	return d.Map(out)
}

// Boxed decodes a single-field record from the bare field value.
type Boxed struct {
	Inner     Decoder
	Construct func(fields map[string]any) (any, error)
	Field     string
}

func (d *Boxed) AcceptsAbsent() bool { return d.Inner.AcceptsAbsent() }

func (d *Boxed) Decode(v any) (any, Errors) {
	out, errs := d.Inner.Decode(v)
	if len(errs) > 0 {
		return nil, errs
	}
	val, err := d.Construct(map[string]any{d.Field: out})
	if err != nil {
		return fail("Could not construct boxed value: %v", err)
	}
	return val, nil
}

// List decodes a homogeneous array.
type List struct {
	Elem    Decoder
	Dialect Dialect
}

func (d *List) AcceptsAbsent() bool { return false }

func (d *List) Decode(v any) (any, Errors) {
	arr, ok := reflectx.Seq(v)
	if !ok {
		return fail("Expected a %s but received something else.", d.Dialect.Array)
	}
	out := make([]any, len(arr))
	var errs Errors
	for i, raw := range arr {
		val, eerrs := d.Elem.Decode(raw)
		if len(eerrs) > 0 {
			errs = append(errs, eerrs.InIndex(i)...)
			continue
		}
		out[i] = val
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// StringDict decodes an object with arbitrary keys into map[string]any.
type StringDict struct {
	Value   Decoder
	Dialect Dialect
}

func (d *StringDict) AcceptsAbsent() bool { return false }

func (d *StringDict) Decode(v any) (any, Errors) {
	obj, errs := stringKeyed(v, d.Dialect)
	if len(errs) > 0 {
		return nil, errs
	}
	out := make(map[string]any, len(obj))
	for _, k := range sortedKeys(obj) {
		val, verrs := d.Value.Decode(obj[k])
		if len(verrs) > 0 {
			errs = append(errs, verrs.InField(k)...)
			continue
		}
		out[k] = val
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// EnumDict decodes an object keyed by enum labels into map[any]any keyed by
// enum values.
type EnumDict struct {
	Key     Decoder
	Value   Decoder
	Dialect Dialect
}

func (d *EnumDict) AcceptsAbsent() bool { return false }

func (d *EnumDict) Decode(v any) (any, Errors) {
	obj, errs := stringKeyed(v, d.Dialect)
	if len(errs) > 0 {
		return nil, errs
	}
	out := make(map[any]any, len(obj))
	for _, k := range sortedKeys(obj) {
		key, kerrs := d.Key.Decode(k)
		if len(kerrs) > 0 {
			errs = append(errs, kerrs.InField(k)...)
			continue
		}
		if _, dup := out[key]; dup {
			errs = append(errs, InField{Field: k, Err: Errorf("Found key %v more than once.", key)})
			continue
		}
		val, verrs := d.Value.Decode(obj[k])
		if len(verrs) > 0 {
			errs = append(errs, verrs.InField(k)...)
			continue
		}
		out[key] = val
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func stringKeyed(v any, dialect Dialect) (map[string]any, Errors) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, nil
	case map[any]any:
		out := make(map[string]any, len(obj))
		var errs Errors
		for k, val := range obj {
			s, ok := k.(string)
			if !ok {
				errs = append(errs, Errorf("Found non-string key %v in a %s (type: %T).", k, dialect.Object, k))
				continue
			}
			out[s] = val
		}
		return out, errs
	}
	return nil, Errors{Errorf("Expected a %s but received something else.", dialect.Object)}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Deferred forwards to the decoder a placeholder cell resolves to.
type Deferred struct {
	Cell *derive.Cell[Decoder]
}

func (d *Deferred) AcceptsAbsent() bool { return d.Cell.Get().AcceptsAbsent() }

func (d *Deferred) Decode(v any) (any, Errors) { return d.Cell.Get().Decode(v) }
