package encode

import (
	stderrors "errors"

	"github.com/wippyai/typeshape/errors"
)

// Encoder turns a typed value into an external value: nil, bool, string,
// int64, float64, []any or map[string]any.
//
// Encoding fails only when the value does not belong to the type the
// encoder was derived for. The returned error is an *errors.Error with
// PhaseEncode whose Path locates the offending component.
type Encoder interface {
	Encode(v any) (any, error)
}

// Func adapts a function to an Encoder.
type Func func(v any) (any, error)

func (f Func) Encode(v any) (any, error) { return f(v) }

// within prefixes the location of err with elem.
func within(err error, elem string) error {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Path(elem).
			Cause(err).
			Build()
	}
	out := *e
	out.Path = append([]string{elem}, e.Path...)
	return &out
}

func mismatch(expected string, v any) error {
	return errors.TypeMismatch(errors.PhaseEncode, nil, expected, v)
}
