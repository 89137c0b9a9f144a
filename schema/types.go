package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a type descriptor node.
type Kind int

const (
	KindPrimitive Kind = iota
	KindParam
	KindUnion
	KindList
	KindDict
	KindTuple
	KindNamed
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindParam:
		return "param"
	case KindUnion:
		return "union"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindTuple:
		return "tuple"
	case KindNamed:
		return "named"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is the root descriptor interface.
type Type interface {
	Kind() Kind
	String() string
}

// Primitive names a registered base type. Families may register
// additional primitives beyond the built-in ones.
type Primitive string

const (
	Bool     Primitive = "bool"
	String   Primitive = "string"
	Int      Primitive = "int"
	Float    Primitive = "float"
	Decimal  Primitive = "decimal"
	Date     Primitive = "date"
	DateTime Primitive = "datetime"
	None     Primitive = "none"
	Any      Primitive = "any"
)

func (p Primitive) Kind() Kind      { return KindPrimitive }
func (p Primitive) String() string { return string(p) }

// Param references a type parameter of the enclosing generic definition.
type Param string

func (p Param) Kind() Kind      { return KindParam }
func (p Param) String() string { return string(p) }

// Union is "one of" its branches, in declared order. A None branch marks the
// union as optional.
type Union struct {
	Branches []Type
}

func (u *Union) Kind() Kind { return KindUnion }

func (u *Union) String() string {
	parts := make([]string, len(u.Branches))
	for i, b := range u.Branches {
		parts[i] = b.String()
	}
	return strings.Join(parts, " | ")
}

// List is a homogeneous sequence.
type List struct {
	Elem Type
}

func (l *List) Kind() Kind      { return KindList }
func (l *List) String() string { return "list[" + l.Elem.String() + "]" }

// Dict maps string or enum keys to values of one type.
type Dict struct {
	Key   Type
	Value Type
}

func (d *Dict) Kind() Kind { return KindDict }

func (d *Dict) String() string {
	return "dict[" + d.Key.String() + ", " + d.Value.String() + "]"
}

// Tuple is a fixed-arity positional product.
type Tuple struct {
	Elems []Type
}

func (t *Tuple) Kind() Kind { return KindTuple }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "tuple[" + strings.Join(parts, ", ") + "]"
}

// Named applies a definition to type arguments. Args may be empty for
// non-generic definitions.
type Named struct {
	Def  *Def
	Args []Type
}

func (n *Named) Kind() Kind { return KindNamed }

func (n *Named) String() string {
	if len(n.Args) == 0 {
		return n.Def.Name
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Def.Name + "[" + strings.Join(parts, ", ") + "]"
}

func UnionOf(branches ...Type) *Union { return &Union{Branches: branches} }

// Optional is shorthand for t | none.
func Optional(t Type) *Union { return &Union{Branches: []Type{t, None}} }

func ListOf(elem Type) *List { return &List{Elem: elem} }

func DictOf(key, value Type) *Dict { return &Dict{Key: key, Value: value} }

func TupleOf(elems ...Type) *Tuple { return &Tuple{Elems: elems} }

// Ref references a definition, applying it to args when it is generic.
func Ref(def *Def, args ...Type) *Named { return &Named{Def: def, Args: args} }

// Key renders t canonically. Unlike String, definitions are keyed by identity,
// so two definitions sharing a name never collide.
func Key(t Type) string {
	var b strings.Builder
	writeKey(&b, t)
	return b.String()
}

func writeKey(b *strings.Builder, t Type) {
	switch v := t.(type) {
	case *Union:
		b.WriteString("union(")
		for i, br := range v.Branches {
			if i > 0 {
				b.WriteByte('|')
			}
			writeKey(b, br)
		}
		b.WriteByte(')')
	case *List:
		b.WriteString("list(")
		writeKey(b, v.Elem)
		b.WriteByte(')')
	case *Dict:
		b.WriteString("dict(")
		writeKey(b, v.Key)
		b.WriteByte(',')
		writeKey(b, v.Value)
		b.WriteByte(')')
	case *Tuple:
		b.WriteString("tuple(")
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			writeKey(b, e)
		}
		b.WriteByte(')')
	case *Named:
		fmt.Fprintf(b, "%s@%p", v.Def.Name, v.Def)
		if len(v.Args) > 0 {
			b.WriteByte('(')
			for i, a := range v.Args {
				if i > 0 {
					b.WriteByte(',')
				}
				writeKey(b, a)
			}
			b.WriteByte(')')
		}
	case Param:
		b.WriteByte('$')
		b.WriteString(string(v))
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString(t.String())
	}
}

// FreeParams returns the sorted, de-duplicated parameter names referenced by t.
func FreeParams(t Type) []string {
	seen := map[string]bool{}
	collectParams(t, seen)
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func collectParams(t Type, seen map[string]bool) {
	switch v := t.(type) {
	case Param:
		seen[string(v)] = true
	case *Union:
		for _, br := range v.Branches {
			collectParams(br, seen)
		}
	case *List:
		collectParams(v.Elem, seen)
	case *Dict:
		collectParams(v.Key, seen)
		collectParams(v.Value, seen)
	case *Tuple:
		for _, e := range v.Elems {
			collectParams(e, seen)
		}
	case *Named:
		for _, a := range v.Args {
			collectParams(a, seen)
		}
	}
}

// Substitute replaces every parameter bound in env. Unbound parameters are kept.
func Substitute(t Type, env map[string]Type) Type {
	if len(env) == 0 {
		return t
	}
	switch v := t.(type) {
	case Param:
		if r, ok := env[string(v)]; ok {
			return r
		}
		return v
	case *Union:
		return &Union{Branches: substituteAll(v.Branches, env)}
	case *List:
		return &List{Elem: Substitute(v.Elem, env)}
	case *Dict:
		return &Dict{Key: Substitute(v.Key, env), Value: Substitute(v.Value, env)}
	case *Tuple:
		return &Tuple{Elems: substituteAll(v.Elems, env)}
	case *Named:
		if len(v.Args) == 0 {
			return v
		}
		return &Named{Def: v.Def, Args: substituteAll(v.Args, env)}
	}
	return t
}

func substituteAll(ts []Type, env map[string]Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Substitute(t, env)
	}
	return out
}

// IsNone reports whether t is the none primitive.
func IsNone(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p == None
}
