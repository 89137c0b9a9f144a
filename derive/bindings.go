package derive

import (
	"sort"
	"strings"

	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/schema"
)

// Bindings maps type parameter names to closed types. It is immutable:
// Extend returns a new value and leaves the receiver untouched, so a callee
// can never disturb its caller's scope.
type Bindings struct {
	m map[string]schema.Type
}

// NewBindings binds params to args positionally. Args must already be closed.
func NewBindings(params []string, args []schema.Type) Bindings {
	if len(params) == 0 {
		return Bindings{}
	}
	m := make(map[string]schema.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			m[p] = args[i]
		}
	}
	return Bindings{m: m}
}

// Lookup resolves a parameter name.
func (b Bindings) Lookup(name string) (schema.Type, bool) {
	t, ok := b.m[name]
	return t, ok
}

// Len returns the number of bound parameters.
func (b Bindings) Len() int { return len(b.m) }

// Close substitutes every parameter in t. The result has no free parameters;
// an unbound parameter is a configuration error.
func (b Bindings) Close(t schema.Type, path []string) (schema.Type, error) {
	for _, p := range schema.FreeParams(t) {
		if _, ok := b.m[p]; !ok {
			return nil, errors.UnboundParam(path, p)
		}
	}
	return schema.Substitute(t, b.m), nil
}

// Enter computes the scope of a generic definition applied to args. Args
// written as parameters are resolved in the caller's scope b. A generic
// definition referenced without arguments inherits same-named parameters
// from the caller, which is how variants of a generic union are reached.
func (b Bindings) Enter(def *schema.Def, args []schema.Type, path []string) (Bindings, error) {
	if len(def.Params) == 0 {
		if len(args) > 0 {
			return Bindings{}, arityError(def, args, path)
		}
		return Bindings{}, nil
	}
	if len(args) == 0 {
		args = make([]schema.Type, len(def.Params))
		for i, p := range def.Params {
			args[i] = schema.Param(p)
		}
	}
	if len(args) != len(def.Params) {
		return Bindings{}, arityError(def, args, path)
	}

	closed := make([]schema.Type, len(args))
	for i, a := range args {
		c, err := b.Close(a, path)
		if err != nil {
			return Bindings{}, err
		}
		closed[i] = c
	}
	return NewBindings(def.Params, closed), nil
}

// Restrict renders the bindings of the given parameters as a sorted,
// comma-separated "name=type" list.
func (b Bindings) Restrict(params []string) string {
	if len(params) == 0 || len(b.m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if t, ok := b.m[p]; ok {
			parts = append(parts, p+"="+schema.Key(t))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// String renders all bindings, sorted by name.
func (b Bindings) String() string {
	names := make([]string, 0, len(b.m))
	for n := range b.m {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + b.m[n].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func arityError(def *schema.Def, args []schema.Type, path []string) error {
	return errors.New(errors.PhaseDerive, errors.KindArity).
		Path(path...).
		Type(def.Name).
		Detail("expected %d type arguments, got %d", len(def.Params), len(args)).
		Build()
}
