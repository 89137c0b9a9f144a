package derive

import (
	"fmt"

	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/schema"
)

// Key identifies one derivation: the normalized type plus the sorted
// bindings of that type's own free parameters.
type Key struct {
	Type     string
	Bindings string
}

func (k Key) String() string {
	if k.Bindings == "" {
		return k.Type
	}
	return k.Type + "{" + k.Bindings + "}"
}

// Cell stands in for an artifact that is still being derived. Each time a
// recursive reference reaches the cell its reference count grows; the engine
// fills the cell exactly once when the real artifact exists.
type Cell[A any] struct {
	value  A
	key    Key
	refs   int
	filled bool
}

// Key returns the derivation the cell stands for.
func (c *Cell[A]) Key() Key { return c.key }

// Refs returns how many artifacts embed the cell.
func (c *Cell[A]) Refs() int { return c.refs }

// Filled reports whether the real artifact is available.
func (c *Cell[A]) Filled() bool { return c.filled }

// Get returns the real artifact. Calling it before the cell is filled is a
// programming error: the engine never hands out artifacts embedding an
// unfilled cell.
func (c *Cell[A]) Get() A {
	if !c.filled {
		panic(fmt.Sprintf("derive: placeholder for %s used before it was filled", c.key))
	}
	return c.value
}

func (c *Cell[A]) fill(a A) {
	if c.filled {
		panic(fmt.Sprintf("derive: placeholder for %s filled twice", c.key))
	}
	c.value = a
	c.filled = true
}

type entry[A any] struct {
	artifact A
	cell     *Cell[A]
}

// request tracks what one top-level Derive call added, so a failed request
// leaves no partial artifacts behind.
type request[A any] struct {
	added []Key
	cells []*Cell[A]
	depth map[*schema.Def]int // instantiations of a definition being built
}

// maxInstantiations bounds how many distinct instantiations of one
// definition may be in flight at once. Polymorphic recursion such as
// Nest[T] = T | Nest[list[T]] never reaches a memo hit and hits this bound.
const maxInstantiations = 32

func (r *request[A]) verify() error {
	for _, c := range r.cells {
		if c.refs > 0 && !c.filled {
			return errors.New(errors.PhaseDerive, errors.KindUnresolvedPlaceholder).
				Type(c.key.Type).
				Detail("placeholder referenced %d times was never filled", c.refs).
				Build()
		}
	}
	return nil
}
