package decode

import "strings"

// Dialect captures how one external format differs from another at the
// value level. The decoders themselves are shared.
type Dialect struct {
	// Format names the format in messages and failures.
	Format string
	// Object and Array name the container shapes in messages.
	Object string
	Array  string
	// LenientBool accepts 0/1 and y/yes/n/no strings as booleans.
	LenientBool bool
	// DottedFields resolves a field name containing dots as a path into
	// nested objects when the literal key is absent.
	DottedFields bool
	// AbsentDecodesNone hands a missing field to a decoder that accepts
	// absence and keeps its result, instead of storing nil.
	AbsentDecodesNone bool
}

var (
	JSON = Dialect{
		Format: "JSON",
		Object: "JSON object",
		Array:  "JSON array",
	}
	HOCON = Dialect{
		Format:            "HOCON",
		Object:            "Hocon config tree",
		Array:             "Hocon array",
		LenientBool:       true,
		DottedFields:      true,
		AbsentDecodesNone: true,
	}
)

func (d Dialect) lookup(obj map[string]any, field string) (any, bool) {
	if v, ok := obj[field]; ok {
		return v, true
	}
	if !d.DottedFields || !strings.Contains(field, ".") {
		return nil, false
	}
	var cur any = obj
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
