package encode

import (
	"strconv"
	"strings"

	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/internal/reflectx"
)

// Field is one record field and its encoder.
type Field struct {
	Encoder Encoder
	Name    string
}

// Object encodes a record as an object holding every declared field.
type Object struct {
	Deconstruct func(v any) (map[string]any, bool)
	Name        string
	Fields      []Field
}

func (e *Object) Encode(v any) (any, error) {
	values, ok := e.Deconstruct(v)
	if !ok {
		return nil, mismatch(e.Name, v)
	}
	out := make(map[string]any, len(e.Fields))
	for _, f := range e.Fields {
		enc, err := f.Encoder.Encode(values[f.Name])
		if err != nil {
			return nil, within(err, f.Name)
		}
		out[f.Name] = enc
	}
	return out, nil
}

// Tuple encodes a fixed-size sequence positionally.
type Tuple struct {
	Elems []Encoder
}

func (e *Tuple) Encode(v any) (any, error) {
	seq, ok := reflectx.Seq(v)
	if !ok {
		return nil, mismatch("tuple", v)
	}
	if len(seq) != len(e.Elems) {
		return nil, errors.InvalidData(errors.PhaseEncode, nil,
			"expected a tuple of size "+strconv.Itoa(len(e.Elems))+" but received one of size "+strconv.Itoa(len(seq)))
	}
	out := make([]any, len(seq))
	for i, elem := range e.Elems {
		enc, err := elem.Encode(seq[i])
		if err != nil {
			return nil, within(err, "["+strconv.Itoa(i)+"]")
		}
		out[i] = enc
	}
	return out, nil
}

// Branch is one variant of a tagged union.
type Branch struct {
	Encoder Encoder
	Owns    func(v any) bool
	Tag     string
}

// Tagged encodes a union value with its variant's tag. With an empty
// ValueField the tag is added to the variant's own object; otherwise the
// payload is nested under ValueField.
type Tagged struct {
	Name       string
	TagField   string
	ValueField string
	Branches   []Branch
}

func (e *Tagged) Encode(v any) (any, error) {
	for _, b := range e.Branches {
		if !b.Owns(v) {
			continue
		}
		enc, err := b.Encoder.Encode(v)
		if err != nil {
			return nil, err
		}
		if e.ValueField != "" {
			return map[string]any{e.TagField: b.Tag, e.ValueField: enc}, nil
		}
		obj, ok := enc.(map[string]any)
		if !ok {
			return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
				Type(e.Name).
				Detail("only objects can carry a flat tag, variant %s encoded to %T", b.Tag, enc).
				Build()
		}
		obj[e.TagField] = b.Tag
		return obj, nil
	}

	known := make([]string, len(e.Branches))
	for i, b := range e.Branches {
		known[i] = b.Tag
	}
	return nil, errors.UnknownVariant(errors.PhaseEncode, e.Name, v, known)
}

// Priority encodes with the first branch that accepts the value.
type Priority struct {
	Encoders []Encoder
	Types    []string
}

func (e *Priority) Encode(v any) (any, error) {
	for _, inner := range e.Encoders {
		if out, err := inner.Encode(v); err == nil {
			return out, nil
		}
	}
	return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
		Type(strings.Join(e.Types, " | ")).
		Value(v).
		Detail("value of Go type %T matches no branch", v).
		Build()
}

// Optional encodes nil as null and otherwise defers to Inner.
type Optional struct {
	Inner Encoder
}

func (e *Optional) Encode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return e.Inner.Encode(v)
}

// Mapped converts the value before encoding it with Inner.
type Mapped struct {
	Inner Encoder
	Map   func(any) any
}

func (e *Mapped) Encode(v any) (any, error) {
	return e.Inner.Encode(e.Map(v))
}

// Boxed encodes a single-field record as its bare field value.
type Boxed struct {
	Inner       Encoder
	Deconstruct func(v any) (map[string]any, bool)
	Field       string
}

func (e *Boxed) Encode(v any) (any, error) {
	values, ok := e.Deconstruct(v)
	if !ok {
		return nil, mismatch("boxed "+e.Field, v)
	}
	return e.Inner.Encode(values[e.Field])
}

// List encodes any slice or array.
type List struct {
	Elem Encoder
}

func (e *List) Encode(v any) (any, error) {
	seq, ok := reflectx.Seq(v)
	if !ok {
		return nil, mismatch("list", v)
	}
	out := make([]any, len(seq))
	for i, item := range seq {
		enc, err := e.Elem.Encode(item)
		if err != nil {
			return nil, within(err, "["+strconv.Itoa(i)+"]")
		}
		out[i] = enc
	}
	return out, nil
}

// StringDict encodes a map with string keys.
type StringDict struct {
	Value Encoder
}

func (e *StringDict) Encode(v any) (any, error) {
	entries, ok := reflectx.Entries(v)
	if !ok {
		return nil, mismatch("dict", v)
	}
	out := make(map[string]any, len(entries))
	for _, ent := range entries {
		k, ok := reflectx.String(ent.Key)
		if !ok {
			return nil, mismatch("string key", ent.Key)
		}
		enc, err := e.Value.Encode(ent.Value)
		if err != nil {
			return nil, within(err, k)
		}
		out[k] = enc
	}
	return out, nil
}

// EnumDict encodes a map keyed by enum values as an object keyed by labels.
type EnumDict struct {
	Key   Encoder
	Value Encoder
}

func (e *EnumDict) Encode(v any) (any, error) {
	entries, ok := reflectx.Entries(v)
	if !ok {
		return nil, mismatch("dict", v)
	}
	out := make(map[string]any, len(entries))
	for _, ent := range entries {
		key, err := e.Key.Encode(ent.Key)
		if err != nil {
			return nil, err
		}
		label, ok := key.(string)
		if !ok {
			return nil, mismatch("string label", key)
		}
		enc, err := e.Value.Encode(ent.Value)
		if err != nil {
			return nil, within(err, label)
		}
		out[label] = enc
	}
	return out, nil
}

// Deferred forwards to the encoder a placeholder cell resolves to.
type Deferred struct {
	Cell *derive.Cell[Encoder]
}

func (e *Deferred) Encode(v any) (any, error) { return e.Cell.Get().Encode(v) }
