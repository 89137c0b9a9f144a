package derive

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/schema"
)

// Engine derives artifacts of one family from type descriptors. Derived
// artifacts are memoized for the lifetime of the engine: asking twice for
// the same type with the same bindings returns the same artifact.
//
// Derivation requests are serialized; the combinators must not call back
// into the engine.
type Engine[A any] struct {
	comb  Combinators[A]
	memo  map[Key]*entry[A]
	stats Stats
	mu    sync.Mutex
}

// Stats counts engine activity since creation.
type Stats struct {
	Derived     int // artifacts built
	Hits        int // memo lookups that found an entry
	Backpatched int // placeholders filled after a recursive reference
	Entries     int // memo size
}

// New creates an engine for a combinator set.
func New[A any](c Combinators[A]) *Engine[A] {
	return &Engine[A]{
		comb: c,
		memo: make(map[Key]*entry[A]),
	}
}

// Derive returns the artifact for t. t must not contain unbound parameters.
//
// Configuration errors (unclassifiable shapes, unbound parameters, bad
// dictionary keys, arity mismatches) are returned as *errors.Error with
// PhaseDerive. A failed request leaves the memo table as it found it.
func (e *Engine[A]) Derive(t schema.Type) (A, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req := &request[A]{}
	a, err := e.derive(req, t, Bindings{}, nil)
	if err == nil {
		err = req.verify()
	}
	if err != nil {
		for _, k := range req.added {
			delete(e.memo, k)
		}
		Logger().Debug("derivation failed", zap.Stringer("type", stringer(t)), zap.Error(err))
		var zero A
		return zero, err
	}
	return a, nil
}

// Extract is Derive under its traditional name.
func (e *Engine[A]) Extract(t schema.Type) (A, error) {
	return e.Derive(t)
}

// Special registers a ready-made artifact for a closed type, taking
// precedence over derivation.
func (e *Engine[A]) Special(t schema.Type, a A) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := Key{Type: schema.Key(t)}
	if n, ok := t.(*schema.Named); ok {
		inner := NewBindings(n.Def.Params, n.Args)
		k = Key{Type: schema.Key(&schema.Named{Def: n.Def}), Bindings: inner.Restrict(n.Def.Params)}
	}
	e.memo[k] = &entry[A]{artifact: a}
}

// Stats returns a snapshot of engine counters.
func (e *Engine[A]) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.Entries = len(e.memo)
	return s
}

// Pending returns the number of memo entries still held by a placeholder.
// It is zero whenever no derivation is running.
func (e *Engine[A]) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ent := range e.memo {
		if ent.cell != nil {
			n++
		}
	}
	return n
}

func (e *Engine[A]) derive(req *request[A], t schema.Type, b Bindings, path []string) (A, error) {
	var zero A

	if p, ok := t.(schema.Param); ok {
		resolved, ok := b.Lookup(string(p))
		if !ok {
			return zero, errors.UnboundParam(path, string(p))
		}
		// Bound types are closed, so they are derived in an empty scope and
		// share memo entries with direct references.
		return e.derive(req, resolved, Bindings{}, path)
	}
	if t == nil {
		return zero, errors.UnknownShape(path, "<nil>")
	}

	key, inner, err := e.key(t, b, path)
	if err != nil {
		return zero, err
	}

	if ent, ok := e.memo[key]; ok {
		e.stats.Hits++
		if ent.cell != nil {
			ent.cell.refs++
			return e.comb.Deferred(ent.cell), nil
		}
		return ent.artifact, nil
	}

	if n, ok := t.(*schema.Named); ok && n.Def != nil && len(n.Def.Params) > 0 {
		if req.depth == nil {
			req.depth = make(map[*schema.Def]int)
		}
		if req.depth[n.Def] >= maxInstantiations {
			return zero, errors.New(errors.PhaseDerive, errors.KindUnsupported).
				Path(path...).
				Type(n.Def.Name).
				Detail("polymorphic recursion: more than %d nested instantiations", maxInstantiations).
				Build()
		}
		req.depth[n.Def]++
		defer func() { req.depth[n.Def]-- }()
	}

	cell := &Cell[A]{key: key}
	e.memo[key] = &entry[A]{cell: cell}
	req.added = append(req.added, key)
	req.cells = append(req.cells, cell)

	a, err := e.build(req, t, inner, path)
	if err != nil {
		return zero, err
	}

	if cell.refs > 0 {
		cell.fill(a)
		e.stats.Backpatched++
	}
	e.memo[key] = &entry[A]{artifact: a}
	e.stats.Derived++

	Logger().Debug("derived artifact",
		zap.String("type", t.String()),
		zap.String("bindings", key.Bindings),
		zap.Int("recursive_refs", cell.refs),
	)
	return a, nil
}

// key computes the memo key of t in scope b, and the scope its components
// are derived in. Entering a generic definition replaces the scope with the
// definition's own parameters.
func (e *Engine[A]) key(t schema.Type, b Bindings, path []string) (Key, Bindings, error) {
	if n, ok := t.(*schema.Named); ok && n.Def != nil {
		inner, err := b.Enter(n.Def, n.Args, path)
		if err != nil {
			return Key{}, Bindings{}, err
		}
		return Key{
			Type:     schema.Key(&schema.Named{Def: n.Def}),
			Bindings: inner.Restrict(n.Def.Params),
		}, inner, nil
	}
	return Key{Type: schema.Key(t), Bindings: b.Restrict(schema.FreeParams(t))}, b, nil
}

func (e *Engine[A]) build(req *request[A], t schema.Type, b Bindings, path []string) (A, error) {
	var zero A

	switch Classify(t) {
	case ShapePrimitive:
		p := t.(schema.Primitive)
		a, ok := e.comb.Primitive(p)
		if !ok {
			return zero, errors.New(errors.PhaseDerive, errors.KindUnknownShape).
				Path(path...).
				Type(p.String()).
				Detail("no artifact registered for primitive").
				Build()
		}
		return a, nil

	case ShapeUntaggedUnion:
		return e.union(req, t.(*schema.Union), b, path)

	case ShapeTaggedUnion:
		def := t.(*schema.Named).Def
		branches := make([]Branch[A], 0, len(def.Variants))
		for _, v := range def.Variants {
			vt := &schema.Named{Def: v}
			a, err := e.derive(req, vt, b, appendPath(path, v.Name))
			if err != nil {
				return zero, err
			}
			branches = append(branches, Branch[A]{Tag: v.Name, Type: vt, Artifact: a})
		}
		return e.comb.NamedSum(def, branches)

	case ShapeList:
		l := t.(*schema.List)
		elem, err := e.derive(req, l.Elem, b, appendPath(path, "[]"))
		if err != nil {
			return zero, err
		}
		return e.comb.List(elem), nil

	case ShapeDict:
		return e.dict(req, t.(*schema.Dict), b, path)

	case ShapeTuple:
		tup := t.(*schema.Tuple)
		elems := make([]A, len(tup.Elems))
		for i, et := range tup.Elems {
			a, err := e.derive(req, et, b, appendPath(path, "["+strconv.Itoa(i)+"]"))
			if err != nil {
				return zero, err
			}
			elems[i] = a
		}
		return e.comb.UnnamedProduct(tup, elems)

	case ShapeRecord:
		def := t.(*schema.Named).Def
		fields := make([]FieldArtifact[A], len(def.Fields))
		for i, f := range def.Fields {
			a, err := e.derive(req, f.Type, b, appendPath(path, f.Name))
			if err != nil {
				return zero, err
			}
			fields[i] = FieldArtifact[A]{Name: f.Name, Type: f.Type, Artifact: a, Default: f.Default}
		}
		return e.comb.NamedProduct(def, fields)

	case ShapeEnum:
		def := t.(*schema.Named).Def
		return e.comb.Enum(def, def.Cases)
	}

	return zero, errors.UnknownShape(path, stringer(t).String())
}

// union strips none branches into an optional wrapper. A single remaining
// branch is used directly without a sum.
func (e *Engine[A]) union(req *request[A], u *schema.Union, b Bindings, path []string) (A, error) {
	var zero A

	optional := false
	rest := make([]schema.Type, 0, len(u.Branches))
	for _, br := range u.Branches {
		resolved := br
		if p, ok := br.(schema.Param); ok {
			if bound, ok := b.Lookup(string(p)); ok {
				resolved = bound
			}
		}
		if schema.IsNone(resolved) {
			optional = true
			continue
		}
		rest = append(rest, br)
	}

	var inner A
	switch len(rest) {
	case 0:
		if !optional {
			return zero, errors.New(errors.PhaseDerive, errors.KindUnknownShape).
				Path(path...).
				Detail("union has no branches").
				Build()
		}
		return e.derive(req, schema.None, b, path)

	case 1:
		a, err := e.derive(req, rest[0], b, path)
		if err != nil {
			return zero, err
		}
		inner = a

	default:
		branches := make([]Branch[A], len(rest))
		for i, br := range rest {
			a, err := e.derive(req, br, b, path)
			if err != nil {
				return zero, err
			}
			closed, err := b.Close(br, path)
			if err != nil {
				return zero, err
			}
			branches[i] = Branch[A]{Tag: closed.String(), Type: closed, Artifact: a}
		}
		a, err := e.comb.UnnamedSum(&schema.Union{Branches: rest}, branches)
		if err != nil {
			return zero, err
		}
		inner = a
	}

	if optional {
		return e.comb.Optional(inner), nil
	}
	return inner, nil
}

func (e *Engine[A]) dict(req *request[A], d *schema.Dict, b Bindings, path []string) (A, error) {
	var zero A

	keyType, err := b.Close(d.Key, path)
	if err != nil {
		return zero, err
	}
	if !validKey(keyType) {
		return zero, errors.UnsupportedKey(path, keyType.String())
	}
	valueType, err := b.Close(d.Value, path)
	if err != nil {
		return zero, err
	}

	ka, err := e.derive(req, d.Key, b, appendPath(path, "{key}"))
	if err != nil {
		return zero, err
	}
	va, err := e.derive(req, d.Value, b, appendPath(path, "{}"))
	if err != nil {
		return zero, err
	}
	return e.comb.Dict(keyType, valueType, ka, va)
}

func validKey(t schema.Type) bool {
	if p, ok := t.(schema.Primitive); ok {
		return p == schema.String
	}
	return Classify(t) == ShapeEnum
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

type typeStringer struct{ t schema.Type }

func (s typeStringer) String() string {
	if s.t == nil {
		return "<nil>"
	}
	return s.t.String()
}

func stringer(t schema.Type) typeStringer { return typeStringer{t} }
