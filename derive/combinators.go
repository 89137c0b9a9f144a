package derive

import "github.com/wippyai/typeshape/schema"

// Combinators assembles artifacts of one family (decoders, encoders,
// exporters) from the artifacts of a type's components. The engine decides
// which method applies; implementations only combine.
//
// Every family must be able to embed a Cell through Deferred: the returned
// artifact forwards to the cell's value once the engine fills it. Artifacts
// must not call Cell.Get while being constructed, only when applied.
type Combinators[A any] interface {
	// Primitive looks up the artifact registered for a base type.
	Primitive(p schema.Primitive) (A, bool)
	NamedProduct(def *schema.Def, fields []FieldArtifact[A]) (A, error)
	UnnamedProduct(t *schema.Tuple, elems []A) (A, error)
	// NamedSum receives one branch per variant, in declared order; the tag is
	// the variant's name.
	NamedSum(def *schema.Def, branches []Branch[A]) (A, error)
	// UnnamedSum receives the non-none branches in declared order.
	UnnamedSum(t *schema.Union, branches []Branch[A]) (A, error)
	Optional(inner A) A
	List(elem A) A
	// Dict receives closed key and value types. The key is either
	// schema.String or an enum.
	Dict(key, value schema.Type, keyArtifact, valueArtifact A) (A, error)
	Enum(def *schema.Def, cases []schema.EnumCase) (A, error)
	Deferred(cell *Cell[A]) A
}

// FieldArtifact is a record field with its derived artifact.
type FieldArtifact[A any] struct {
	Artifact A
	Type     schema.Type
	Default  *schema.Default
	Name     string
}

// Branch is one alternative of a sum with its derived artifact.
type Branch[A any] struct {
	Artifact A
	Type     schema.Type
	Tag      string
}
