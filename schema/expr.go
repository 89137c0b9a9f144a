package schema

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wippyai/typeshape/errors"
)

var builtinPrimitives = map[string]Primitive{
	"bool":     Bool,
	"string":   String,
	"int":      Int,
	"float":    Float,
	"decimal":  Decimal,
	"date":     Date,
	"datetime": DateTime,
	"none":     None,
	"any":      Any,
}

// ParseExpr parses a type expression such as
//
//	list[Point]
//	dict[string, optional[int]]
//	tuple[int, string]
//	Circle | Square | none
//	Tree[T]
//
// Names resolve first against params, then primitives, then the registry.
func ParseExpr(expr string, reg *Registry, params []string) (Type, error) {
	p := &exprParser{src: expr, reg: reg, params: params}
	p.next()
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	if p.tok != "" {
		return nil, p.fail("unexpected %q", p.tok)
	}
	return t, nil
}

type exprParser struct {
	reg    *Registry
	src    string
	tok    string
	params []string
	pos    int
	start  int
}

func (p *exprParser) next() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
	p.start = p.pos
	if p.pos >= len(p.src) {
		p.tok = ""
		return
	}
	switch c := p.src[p.pos]; c {
	case '[', ']', ',', '|':
		p.pos++
		p.tok = string(c)
		return
	}
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == p.start {
		p.pos++
	}
	p.tok = p.src[p.start:p.pos]
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *exprParser) fail(format string, args ...any) error {
	return errors.Syntax(errors.PhaseParse, p.src, p.start, fmt.Sprintf(format, args...))
}

func (p *exprParser) expect(tok string) error {
	if p.tok != tok {
		if p.tok == "" {
			return p.fail("expected %q, found end of input", tok)
		}
		return p.fail("expected %q, found %q", tok, p.tok)
	}
	p.next()
	return nil
}

func (p *exprParser) union() (Type, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	if p.tok != "|" {
		return first, nil
	}
	branches := []Type{first}
	for p.tok == "|" {
		p.next()
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		branches = append(branches, t)
	}
	return &Union{Branches: branches}, nil
}

func (p *exprParser) term() (Type, error) {
	if p.tok == "" || strings.ContainsAny(p.tok, "[],|") {
		return nil, p.fail("expected a type name")
	}
	name := p.tok
	p.next()

	var args []Type
	if p.tok == "[" {
		p.next()
		for {
			t, err := p.union()
			if err != nil {
				return nil, err
			}
			args = append(args, t)
			if p.tok != "," {
				break
			}
			p.next()
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
	}
	return p.resolve(name, args)
}

func (p *exprParser) resolve(name string, args []Type) (Type, error) {
	arity := func(n int) error {
		if len(args) != n {
			return errors.New(errors.PhaseParse, errors.KindArity).
				Type(name).
				Detail("%s takes %d type arguments, got %d", name, n, len(args)).
				Build()
		}
		return nil
	}

	for _, param := range p.params {
		if param == name {
			if err := arity(0); err != nil {
				return nil, err
			}
			return Param(name), nil
		}
	}

	if prim, ok := builtinPrimitives[name]; ok {
		if err := arity(0); err != nil {
			return nil, err
		}
		return prim, nil
	}

	switch name {
	case "list":
		if err := arity(1); err != nil {
			return nil, err
		}
		return &List{Elem: args[0]}, nil
	case "dict":
		if err := arity(2); err != nil {
			return nil, err
		}
		return &Dict{Key: args[0], Value: args[1]}, nil
	case "optional":
		if err := arity(1); err != nil {
			return nil, err
		}
		return Optional(args[0]), nil
	case "tuple":
		if len(args) == 0 {
			return nil, p.fail("tuple needs at least one element type")
		}
		return &Tuple{Elems: args}, nil
	}

	if p.reg != nil {
		if def, ok := p.reg.Lookup(name); ok {
			if len(args) > 0 {
				if err := arity(len(def.Params)); err != nil {
					return nil, err
				}
			}
			return &Named{Def: def, Args: args}, nil
		}
	}

	return nil, errors.NotFound(errors.PhaseParse, "type", name)
}
