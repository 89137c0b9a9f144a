package metrics

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/internal/reflectx"
	"github.com/wippyai/typeshape/schema"
)

// Exporter turns a typed value into a metrics tree. Values that do not fit
// the exporter's type export as an empty collection.
type Exporter interface {
	Export(v any) Tree
}

// Func adapts a function to an Exporter.
type Func func(v any) Tree

func (f Func) Export(v any) Tree { return f(v) }

var empty = Unnamed{}

func skipped(exporter string, v any) Tree {
	Logger().Debug("value skipped by exporter",
		zap.String("exporter", exporter),
		zap.String("go_type", fmt.Sprintf("%T", v)),
	)
	return empty
}

// Value exports a number as a leaf.
type Value struct{}

func (Value) Export(v any) Tree {
	if d, ok := v.(decimal.Decimal); ok {
		return Leaf{Value: d.InexactFloat64()}
	}
	if f, ok := reflectx.Float(v); ok {
		return Leaf{Value: f}
	}
	return skipped("value", v)
}

// String exports a string as a tag.
type String struct{}

func (String) Export(v any) Tree {
	s, ok := reflectx.String(v)
	if !ok {
		return skipped("string", v)
	}
	return Tag{Value: s}
}

// Bool exports a boolean as a yes/no tag.
type Bool struct{}

func (Bool) Export(v any) Tree {
	b, ok := reflectx.Bool(v)
	if !ok {
		return skipped("bool", v)
	}
	if b {
		return Tag{Value: "yes"}
	}
	return Tag{Value: "no"}
}

// Date exports the calendar parts of a date as tags.
type Date struct{}

func (Date) Export(v any) Tree {
	t, ok := v.(time.Time)
	if !ok {
		return skipped("date", v)
	}
	return Unnamed{Children: dateTags(t)}
}

func dateTags(t time.Time) []Tree {
	return []Tree{
		Tag{Postfix: "_day", Value: strconv.Itoa(t.Day())},
		Tag{Postfix: "_month", Value: strconv.Itoa(int(t.Month()))},
		Tag{Postfix: "_year", Value: strconv.Itoa(t.Year())},
		Tag{Postfix: "_weekday", Value: t.Weekday().String()},
	}
}

// DateTime exports a timestamp like Date plus its hour.
type DateTime struct{}

func (DateTime) Export(v any) Tree {
	t, ok := v.(time.Time)
	if !ok {
		return skipped("datetime", v)
	}
	return Unnamed{Children: append(dateTags(t), Tag{Postfix: "_hour", Value: strconv.Itoa(t.Hour())})}
}

// None exports nothing.
type None struct{}

func (None) Export(any) Tree { return empty }

// Any exports untyped values by their runtime type: numbers as leaves,
// strings and booleans as tags. Collections export nothing.
type Any struct{}

func (Any) Export(v any) Tree {
	switch x := v.(type) {
	case nil:
		return empty
	case bool:
		return Bool{}.Export(x)
	case string:
		return Tag{Value: x}
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return skipped("any", v)
		}
		return Leaf{Value: f}
	case decimal.Decimal:
		return Leaf{Value: x.InexactFloat64()}
	}
	if f, ok := reflectx.Float(v); ok {
		return Leaf{Value: f}
	}
	return empty
}

// Field is one record field and its exporter.
type Field struct {
	Exporter Exporter
	Name     string
}

// Object exports a record as a named collection of its fields.
type Object struct {
	Deconstruct func(v any) (map[string]any, bool)
	Name        string
	Fields      []Field
}

func (e *Object) Export(v any) Tree {
	values, ok := e.Deconstruct(v)
	if !ok {
		return skipped(e.Name, v)
	}
	children := make([]Child, len(e.Fields))
	for i, f := range e.Fields {
		children[i] = Child{Name: f.Name, Tree: f.Exporter.Export(values[f.Name])}
	}
	return Named{Children: children}
}

// Tuple exports each element positionally.
type Tuple struct {
	Elems []Exporter
}

func (e *Tuple) Export(v any) Tree {
	seq, ok := reflectx.Seq(v)
	if !ok {
		return skipped("tuple", v)
	}
	children := make([]Tree, 0, len(e.Elems))
	for i, elem := range e.Elems {
		if i >= len(seq) {
			break
		}
		children = append(children, elem.Export(seq[i]))
	}
	return Unnamed{Children: children}
}

// List exports every element.
type List struct {
	Elem Exporter
}

func (e *List) Export(v any) Tree {
	seq, ok := reflectx.Seq(v)
	if !ok {
		return skipped("list", v)
	}
	children := make([]Tree, len(seq))
	for i, item := range seq {
		children[i] = e.Elem.Export(item)
	}
	return Unnamed{Children: children}
}

// Branch is one variant of a tagged union.
type Branch struct {
	Exporter Exporter
	Owns     func(v any) bool
	Tag      string
}

// Tagged exports the matching variant next to a tag naming it.
type Tagged struct {
	Postfix  string
	Branches []Branch
}

func (e *Tagged) Export(v any) Tree {
	for _, b := range e.Branches {
		if b.Owns(v) {
			return Unnamed{Children: []Tree{Tag{Postfix: e.Postfix, Value: b.Tag}, b.Exporter.Export(v)}}
		}
	}
	return empty
}

// Alternative is one branch of an untagged union with its membership test.
type Alternative struct {
	Exporter Exporter
	Accepts  func(v any) bool
}

// Priority exports with the first alternative that accepts the value.
type Priority struct {
	Alternatives []Alternative
}

func (e *Priority) Export(v any) Tree {
	for _, a := range e.Alternatives {
		if a.Accepts(v) {
			return a.Exporter.Export(v)
		}
	}
	return empty
}

// Optional adds a _present tag.
type Optional struct {
	Inner Exporter
}

func (e *Optional) Export(v any) Tree {
	if v == nil {
		return Tag{Postfix: "_present", Value: "no"}
	}
	return Unnamed{Children: []Tree{Tag{Postfix: "_present", Value: "yes"}, e.Inner.Export(v)}}
}

// Dict exports a map as a named collection, one child per key. Keys are
// named by Key, which must export a Tag; nil Key uses string keys as is.
type Dict struct {
	Key   Exporter
	Value Exporter
}

func (e *Dict) Export(v any) Tree {
	entries, ok := reflectx.Entries(v)
	if !ok {
		return skipped("dict", v)
	}
	children := make([]Child, 0, len(entries))
	for _, ent := range entries {
		name, ok := e.keyName(ent.Key)
		if !ok {
			continue
		}
		children = append(children, Child{Name: name, Tree: e.Value.Export(ent.Value)})
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return Named{Children: children}
}

func (e *Dict) keyName(k any) (string, bool) {
	if e.Key == nil {
		return reflectx.String(k)
	}
	tag, ok := e.Key.Export(k).(Tag)
	return tag.Value, ok
}

// Enum exports a case value as a tag holding its label.
type Enum struct {
	Name  string
	Cases []schema.EnumCase
}

func (e *Enum) Export(v any) Tree {
	for _, c := range e.Cases {
		if reflect.DeepEqual(c.Value, v) {
			return Tag{Value: c.Label}
		}
	}
	return skipped(e.Name, v)
}

// Deferred forwards to the exporter a placeholder cell resolves to.
type Deferred struct {
	Cell *derive.Cell[Exporter]
}

func (e *Deferred) Export(v any) Tree { return e.Cell.Get().Export(v) }
