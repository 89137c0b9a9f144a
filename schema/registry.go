package schema

import (
	"sort"
	"sync"

	"github.com/wippyai/typeshape/errors"
)

// Registry maps definition names to definitions. It is safe for concurrent use.
type Registry struct {
	defs map[string]*Def
	mu   sync.RWMutex
}

// NewRegistry creates a registry holding defs.
func NewRegistry(defs ...*Def) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Def)}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a definition. Registering the same definition twice is a
// no-op; a different definition under a taken name is an error.
func (r *Registry) Register(def *Def) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.defs[def.Name]; ok {
		if existing == def {
			return nil
		}
		return errors.New(errors.PhaseLoad, errors.KindDuplicate).
			Type(def.Name).
			Detail("definition %q is already registered", def.Name).
			Build()
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for name := range r.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of registered definitions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Resolve parses a type expression against the registry.
func (r *Registry) Resolve(expr string) (Type, error) {
	return ParseExpr(expr, r, nil)
}
