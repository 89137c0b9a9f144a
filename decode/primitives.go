package decode

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wippyai/typeshape/internal/reflectx"
	"github.com/wippyai/typeshape/schema"
)

// String accepts strings only.
type String struct{ Dialect Dialect }

func (d String) AcceptsAbsent() bool { return false }

func (d String) Decode(v any) (any, Errors) {
	s, ok := v.(string)
	if !ok {
		return fail("Expected a %s string but received something else.", d.Dialect.Format)
	}
	return s, nil
}

// Number decodes to decimal.Decimal from any number or a numeric string.
type Number struct{ Dialect Dialect }

func (d Number) AcceptsAbsent() bool { return false }

func (d Number) Decode(v any) (any, Errors) {
	n, errs := toDecimal(v, d.Dialect)
	if len(errs) > 0 {
		return nil, errs
	}
	return n, nil
}

func toDecimal(v any, dialect Dialect) (decimal.Decimal, Errors) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		return parseDecimal(n.String())
	case string:
		return parseDecimal(n)
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), nil
	case bool:
		// bool is not a number here even though some formats store it as one
	default:
		if i, ok := reflectx.Int(v); ok {
			return decimal.NewFromInt(i), nil
		}
	}
	return decimal.Decimal{}, Errors{Errorf(
		"Expected a %s number or a %s string encoding a number but received something of type %T.",
		dialect.Format, dialect.Format, v)}
}

func parseDecimal(s string) (decimal.Decimal, Errors) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, Errors{Errorf("Value not convertible to decimal: '%s'.", s)}
	}
	return d, nil
}

var (
	minInt = decimal.NewFromInt(math.MinInt64)
	maxInt = decimal.NewFromInt(math.MaxInt64)
)

// Int decodes integral numbers to int64.
type Int struct{ Dialect Dialect }

func (d Int) AcceptsAbsent() bool { return false }

func (d Int) Decode(v any) (any, Errors) {
	if i, ok := reflectx.Int(v); ok {
		return i, nil
	}
	n, errs := toDecimal(v, d.Dialect)
	if len(errs) > 0 {
		return nil, errs
	}
	if !n.IsInteger() {
		return fail("Expected an integral number but received non-integral number %s.", n.String())
	}
	if n.LessThan(minInt) || n.GreaterThan(maxInt) {
		return fail("Expected an integer within the 64-bit range but received %s.", n.String())
	}
	return n.IntPart(), nil
}

// Float decodes any number to float64.
type Float struct{ Dialect Dialect }

func (d Float) AcceptsAbsent() bool { return false }

func (d Float) Decode(v any) (any, Errors) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	n, errs := toDecimal(v, d.Dialect)
	if len(errs) > 0 {
		return nil, errs
	}
	return n.InexactFloat64(), nil
}

// Bool decodes booleans. Lenient dialects also accept 0/1 and yes/no words.
type Bool struct{ Dialect Dialect }

func (d Bool) AcceptsAbsent() bool { return false }

func (d Bool) Decode(v any) (any, Errors) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if !d.Dialect.LenientBool {
		return fail("Expected a %s boolean but received something else.", d.Dialect.Format)
	}

	if s, ok := v.(string); ok {
		switch strings.ToLower(s) {
		case "y", "yes", "true":
			return true, nil
		case "n", "no", "false":
			return false, nil
		}
		return fail("Expected a Boolean value but received a string with value=%s.", s)
	}
	if n, errs := toDecimal(v, d.Dialect); len(errs) == 0 {
		switch {
		case n.Equal(decimal.NewFromInt(1)):
			return true, nil
		case n.IsZero():
			return false, nil
		}
		return fail("Received an integer other than 0 or 1 for a Boolean type (value=%s).", n.String())
	}
	return fail("Expected a Boolean value but received a value of type %T.", v)
}

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	dateLayout,
}

// ParseDateTime parses the ISO 8601 forms accepted by the datetime decoder.
func ParseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date decodes an ISO 8601 date to a time.Time at midnight UTC. A full
// timestamp is accepted and truncated to its date.
type Date struct{ Dialect Dialect }

func (d Date) AcceptsAbsent() bool { return false }

func (d Date) Decode(v any) (any, Errors) {
	t, ok := v.(time.Time)
	if !ok {
		s, ok := v.(string)
		if !ok {
			return fail("Expected a %s string but received something else.", d.Dialect.Format)
		}
		if t, ok = ParseDateTime(s); !ok {
			return fail("Expected a string representing a date but received '%s'.", s)
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// DateTime decodes an ISO 8601 timestamp.
type DateTime struct{ Dialect Dialect }

func (d DateTime) AcceptsAbsent() bool { return false }

func (d DateTime) Decode(v any) (any, Errors) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	s, ok := v.(string)
	if !ok {
		return fail("Expected a %s string but received something else.", d.Dialect.Format)
	}
	t, ok := ParseDateTime(s)
	if !ok {
		return fail("Expected a string representing a datetime but received '%s'.", s)
	}
	return t, nil
}

// Enum decodes a label to its case value.
type Enum struct {
	Name    string
	Cases   []schema.EnumCase
	Dialect Dialect
}

func (d *Enum) AcceptsAbsent() bool { return false }

func (d *Enum) Decode(v any) (any, Errors) {
	s, ok := v.(string)
	if !ok {
		return fail("Expected a %s string but received something else.", d.Dialect.Format)
	}
	for _, c := range d.Cases {
		if c.Label == s {
			return c.Value, nil
		}
	}
	return fail("Unexpected value %s while deserializing enum %s.", s, d.Name)
}

// None decodes any value, including the empty object the none encoder
// writes, to nil.
type None struct{}

func (None) AcceptsAbsent() bool { return true }

func (None) Decode(any) (any, Errors) { return nil, nil }

// Any passes the external value through unchecked.
type Any struct{}

func (Any) AcceptsAbsent() bool { return false }

func (Any) Decode(v any) (any, Errors) { return v, nil }
