package derive

import "github.com/wippyai/typeshape/schema"

// Shape is the structural classification of a type.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapePrimitive
	ShapeUntaggedUnion
	ShapeTaggedUnion
	ShapeList
	ShapeDict
	ShapeTuple
	ShapeRecord
	ShapeEnum
)

var shapeNames = [...]string{
	ShapeUnknown:       "unknown",
	ShapePrimitive:     "primitive",
	ShapeUntaggedUnion: "untagged union",
	ShapeTaggedUnion:   "tagged union",
	ShapeList:          "list",
	ShapeDict:          "dict",
	ShapeTuple:         "tuple",
	ShapeRecord:        "record",
	ShapeEnum:          "enum",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// Classify assigns t a shape. The checks run in a fixed order and the first
// match wins; the order must not change, since a crafted definition can
// satisfy several of them. Parameters are not classified: they are resolved
// before classification.
func Classify(t schema.Type) Shape {
	if _, ok := t.(schema.Primitive); ok {
		return ShapePrimitive
	}
	if _, ok := t.(*schema.Union); ok {
		return ShapeUntaggedUnion
	}
	n, named := t.(*schema.Named)
	if named && n.Def == nil {
		return ShapeUnknown
	}
	if named && len(n.Def.Variants) > 0 {
		return ShapeTaggedUnion
	}
	if _, ok := t.(*schema.List); ok {
		return ShapeList
	}
	if _, ok := t.(*schema.Dict); ok {
		return ShapeDict
	}
	if _, ok := t.(*schema.Tuple); ok {
		return ShapeTuple
	}
	if named && (len(n.Def.Fields) > 0 || len(n.Def.Cases) == 0) {
		return ShapeRecord
	}
	if named && len(n.Def.Cases) > 0 {
		return ShapeEnum
	}
	return ShapeUnknown
}
