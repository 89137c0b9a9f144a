package decode

import (
	"fmt"
	"strconv"
	"strings"
)

// Error is a located decode error: a Leaf message, possibly wrapped in any
// number of InField and InIndex locations.
type Error interface {
	error
	located()
}

// Leaf is an error at the current position.
type Leaf struct {
	Msg string
}

// InField locates an error under an object field or dictionary key.
type InField struct {
	Err   Error
	Field string
}

// InIndex locates an error under an array position.
type InIndex struct {
	Err   Error
	Index int
}

func (Leaf) located()    {}
func (InField) located() {}
func (InIndex) located() {}

func (e Leaf) Error() string    { return e.Msg }
func (e InField) Error() string { return render(e) }
func (e InIndex) Error() string { return render(e) }

// Errorf creates a leaf error.
func Errorf(format string, args ...any) Error {
	return Leaf{Msg: fmt.Sprintf(format, args...)}
}

// Path renders the location of e, e.g. ".field[2].inner". A leaf has an
// empty path.
func Path(e Error) string {
	var b strings.Builder
	for {
		switch v := e.(type) {
		case InField:
			b.WriteByte('.')
			b.WriteString(v.Field)
			e = v.Err
		case InIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v.Index))
			b.WriteByte(']')
			e = v.Err
		default:
			return b.String()
		}
	}
}

// Message returns the leaf message of e.
func Message(e Error) string {
	for {
		switch v := e.(type) {
		case InField:
			e = v.Err
		case InIndex:
			e = v.Err
		case Leaf:
			return v.Msg
		default:
			return fmt.Sprint(e)
		}
	}
}

func render(e Error) string {
	if p := Path(e); p != "" {
		return p + ": " + Message(e)
	}
	return Message(e)
}

// Errors is the ordered list of failures of one decode.
type Errors []Error

// InField locates every error under field.
func (es Errors) InField(field string) Errors {
	out := make(Errors, len(es))
	for i, e := range es {
		out[i] = InField{Field: field, Err: e}
	}
	return out
}

// InIndex locates every error under index.
func (es Errors) InIndex(index int) Errors {
	out := make(Errors, len(es))
	for i, e := range es {
		out[i] = InIndex{Index: index, Err: e}
	}
	return out
}

// Strings renders each error as "path: message".
func (es Errors) Strings() []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = render(e)
	}
	return out
}

// Failure is the aggregate error returned by Read.
type Failure struct {
	Format string
	Errors Errors
}

func (f *Failure) Error() string {
	return fmt.Sprintf("Found %d errors while validating %s: [\n  %s]",
		len(f.Errors), f.Format, strings.Join(f.Errors.Strings(), ",\n  "))
}
