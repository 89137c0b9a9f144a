package decode

import (
	"fmt"

	"github.com/wippyai/typeshape/errors"
)

// Decoder turns an external value into a typed value. Decode returns either
// the value or a non-empty list of errors, never both.
//
// External values use the generic model produced by the wire package:
// nil, bool, string, numbers, []any and map[string]any.
type Decoder interface {
	Decode(v any) (any, Errors)
	// AcceptsAbsent reports whether a missing or null field can be handed to
	// this decoder instead of failing.
	AcceptsAbsent() bool
}

// Func adapts a function to a Decoder that does not accept absence.
type Func func(v any) (any, Errors)

func (f Func) Decode(v any) (any, Errors) { return f(v) }
func (f Func) AcceptsAbsent() bool        { return false }

// Read decodes v and folds any errors into a *Failure naming format.
func Read(d Decoder, v any, format string) (any, error) {
	out, errs := d.Decode(v)
	if len(errs) > 0 {
		return nil, &Failure{Format: format, Errors: errs}
	}
	return out, nil
}

// ReadAs is Read with a typed result.
func ReadAs[T any](d Decoder, v any, format string) (T, error) {
	var zero T
	out, err := Read(d, v, format)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	t, ok := out.(T)
	if !ok {
		return zero, errors.TypeMismatch(errors.PhaseDecode, nil, fmt.Sprintf("%T", zero), out)
	}
	return t, nil
}

func fail(format string, args ...any) (any, Errors) {
	return nil, Errors{Errorf(format, args...)}
}
