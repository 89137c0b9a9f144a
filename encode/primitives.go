package encode

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/internal/reflectx"
	"github.com/wippyai/typeshape/schema"
)

// String encodes string values, including named string types.
type String struct{}

func (String) Encode(v any) (any, error) {
	s, ok := reflectx.String(v)
	if !ok {
		return nil, mismatch("string", v)
	}
	return s, nil
}

// Int encodes any Go integer as int64.
type Int struct{}

func (Int) Encode(v any) (any, error) {
	n, ok := reflectx.Int(v)
	if !ok {
		return nil, mismatch("int", v)
	}
	return n, nil
}

// Float encodes Go floats and integers as float64.
type Float struct{}

func (Float) Encode(v any) (any, error) {
	f, ok := reflectx.Float(v)
	if !ok {
		return nil, mismatch("float", v)
	}
	return f, nil
}

// Bool encodes booleans.
type Bool struct{}

func (Bool) Encode(v any) (any, error) {
	b, ok := reflectx.Bool(v)
	if !ok {
		return nil, mismatch("bool", v)
	}
	return b, nil
}

// Decimal encodes decimals as their exact string form.
type Decimal struct{}

func (Decimal) Encode(v any) (any, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.String(), nil
	case *decimal.Decimal:
		if d != nil {
			return d.String(), nil
		}
	}
	return nil, mismatch("decimal", v)
}

// Date encodes the calendar date of a time.Time as YYYY-MM-DD.
type Date struct{}

func (Date) Encode(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, mismatch("date", v)
	}
	return t.Format(time.DateOnly), nil
}

// DateTime encodes a time.Time in RFC 3339 form.
type DateTime struct{}

func (DateTime) Encode(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, mismatch("datetime", v)
	}
	return t.Format(time.RFC3339Nano), nil
}

// Enum encodes a case value as its label.
type Enum struct {
	Name  string
	Cases []schema.EnumCase
}

func (e *Enum) Encode(v any) (any, error) {
	for _, c := range e.Cases {
		if reflect.DeepEqual(c.Value, v) {
			return c.Label, nil
		}
	}
	return nil, errors.InvalidEnum(errors.PhaseEncode, nil, v, e.Name)
}

// None encodes nil as an empty object.
type None struct{}

func (None) Encode(v any) (any, error) {
	if v != nil {
		return nil, mismatch("none", v)
	}
	return map[string]any{}, nil
}

// Any passes the value through unchanged.
type Any struct{}

func (Any) Encode(v any) (any, error) { return v, nil }
