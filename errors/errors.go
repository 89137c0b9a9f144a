package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDerive Phase = "derive" // artifact derivation from a type descriptor
	PhaseDecode Phase = "decode" // external value to typed value
	PhaseEncode Phase = "encode" // typed value to external value
	PhaseExport Phase = "export" // typed value to metrics tree
	PhaseLoad   Phase = "load"   // schema document loading
	PhaseParse  Phase = "parse"  // type expressions and wire formats
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownShape          Kind = "unknown_shape"
	KindUnboundParam          Kind = "unbound_param"
	KindArity                 Kind = "arity"
	KindUnsupportedKey        Kind = "unsupported_key"
	KindUnresolvedPlaceholder Kind = "unresolved_placeholder"
	KindTypeMismatch          Kind = "type_mismatch"
	KindInvalidVariant        Kind = "invalid_variant"
	KindInvalidEnum           Kind = "invalid_enum"
	KindInvalidData           Kind = "invalid_data"
	KindFieldMissing          Kind = "field_missing"
	KindNotFound              Kind = "not_found"
	KindDuplicate             Kind = "duplicate"
	KindUnsupported           Kind = "unsupported"
	KindSyntax                Kind = "syntax"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(JoinPath(e.Path))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// JoinPath renders a location path. Index elements such as "[2]" attach to
// the preceding element without a dot: Tree.children[].value.
func JoinPath(path []string) string {
	var b strings.Builder
	for i, elem := range path {
		if i > 0 && !strings.HasPrefix(elem, "[") {
			b.WriteByte('.')
		}
		b.WriteString(elem)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the type name the error refers to
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnknownShape reports a type the derivation engine cannot classify
func UnknownShape(path []string, typ string) *Error {
	return &Error{
		Phase:  PhaseDerive,
		Kind:   KindUnknownShape,
		Path:   path,
		Type:   typ,
		Detail: "no artifact can be derived for this shape",
	}
}

// UnboundParam reports a type parameter with no binding in scope
func UnboundParam(path []string, param string) *Error {
	return &Error{
		Phase:  PhaseDerive,
		Kind:   KindUnboundParam,
		Path:   path,
		Detail: fmt.Sprintf("type parameter %s is not bound", param),
	}
}

// UnsupportedKey reports a dictionary keyed by something other than a string or an enum
func UnsupportedKey(path []string, keyType string) *Error {
	return &Error{
		Phase:  PhaseDerive,
		Kind:   KindUnsupportedKey,
		Path:   path,
		Type:   keyType,
		Detail: "dictionary keys must be strings or enums",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, expected string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   expected,
		Value:  value,
		Detail: fmt.Sprintf("unexpected value of Go type %T", value),
	}
}

// UnknownVariant reports a tagged-union value that matches none of the known variants
func UnknownVariant(phase Phase, union string, value any, known []string) *Error {
	sorted := append([]string(nil), known...)
	sort.Strings(sorted)
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Type:   union,
		Value:  value,
		Detail: fmt.Sprintf("unknown variant %T (known variants are: %s)", value, strings.Join(sorted, ", ")),
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, path []string, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Path:   path,
		Type:   enumType,
		Detail: fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Syntax creates a syntax error at a byte offset of the input
func Syntax(phase Phase, input string, offset int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSyntax,
		Value:  input,
		Detail: fmt.Sprintf("%s at offset %d in %q", detail, offset, input),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
