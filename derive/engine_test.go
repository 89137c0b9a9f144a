package derive

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	tserrors "github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/schema"
)

// sketch is an artifact that records how it was assembled.
type sketch struct {
	cell     *Cell[*sketch]
	kind     string
	label    string
	children []*sketch
}

func (p *sketch) String() string {
	if p.cell != nil {
		return "rec"
	}
	if len(p.children) == 0 {
		return p.kind + ":" + p.label
	}
	parts := make([]string, len(p.children))
	for i, c := range p.children {
		parts[i] = c.String()
	}
	return p.kind + ":" + p.label + "(" + strings.Join(parts, ", ") + ")"
}

// resolve follows a deferred sketch to its target.
func (p *sketch) resolve() *sketch {
	if p.cell != nil {
		return p.cell.Get()
	}
	return p
}

type sketches struct {
	prims map[schema.Primitive]*sketch
}

func newSketches() *sketches {
	prims := map[schema.Primitive]*sketch{}
	for _, p := range []schema.Primitive{schema.Bool, schema.String, schema.Int, schema.Float, schema.None} {
		prims[p] = &sketch{kind: "prim", label: string(p)}
	}
	return &sketches{prims: prims}
}

func (f *sketches) Primitive(p schema.Primitive) (*sketch, bool) {
	a, ok := f.prims[p]
	return a, ok
}

func (f *sketches) NamedProduct(def *schema.Def, fields []FieldArtifact[*sketch]) (*sketch, error) {
	p := &sketch{kind: "record", label: def.Name}
	for _, fa := range fields {
		p.children = append(p.children, fa.Artifact)
	}
	return p, nil
}

func (f *sketches) UnnamedProduct(t *schema.Tuple, elems []*sketch) (*sketch, error) {
	return &sketch{kind: "tuple", label: t.String(), children: elems}, nil
}

func (f *sketches) NamedSum(def *schema.Def, branches []Branch[*sketch]) (*sketch, error) {
	p := &sketch{kind: "tagged", label: def.Name}
	for _, b := range branches {
		p.children = append(p.children, b.Artifact)
	}
	return p, nil
}

func (f *sketches) UnnamedSum(t *schema.Union, branches []Branch[*sketch]) (*sketch, error) {
	p := &sketch{kind: "sum", label: t.String()}
	for _, b := range branches {
		p.children = append(p.children, b.Artifact)
	}
	return p, nil
}

func (f *sketches) Optional(inner *sketch) *sketch {
	return &sketch{kind: "optional", children: []*sketch{inner}}
}

func (f *sketches) List(elem *sketch) *sketch {
	return &sketch{kind: "list", children: []*sketch{elem}}
}

func (f *sketches) Dict(key, value schema.Type, ka, va *sketch) (*sketch, error) {
	return &sketch{kind: "dict", label: key.String(), children: []*sketch{ka, va}}, nil
}

func (f *sketches) Enum(def *schema.Def, cases []schema.EnumCase) (*sketch, error) {
	return &sketch{kind: "enum", label: def.Name}, nil
}

func (f *sketches) Deferred(cell *Cell[*sketch]) *sketch {
	return &sketch{kind: "deferred", cell: cell}
}

func TestClassify(t *testing.T) {
	rec := schema.NewRecord("R", schema.NewField("x", schema.Int))
	enum := schema.NewEnum("E", "a")
	union := schema.NewUnion("U", rec)

	// A definition that is a union, a record and an enum at once resolves
	// to the earliest shape in priority order.
	crafted := &schema.Def{
		Name:     "Crafted",
		Fields:   []schema.Field{schema.NewField("x", schema.Int)},
		Variants: []*schema.Def{rec},
		Cases:    []schema.EnumCase{{Label: "a", Value: "a"}},
	}
	recordAndEnum := &schema.Def{
		Name:   "RecordAndEnum",
		Fields: []schema.Field{schema.NewField("x", schema.Int)},
		Cases:  []schema.EnumCase{{Label: "a", Value: "a"}},
	}

	tests := []struct {
		name string
		typ  schema.Type
		want Shape
	}{
		{"primitive", schema.Int, ShapePrimitive},
		{"untagged union", schema.UnionOf(schema.Int, schema.String), ShapeUntaggedUnion},
		{"optional", schema.Optional(schema.Int), ShapeUntaggedUnion},
		{"tagged union", schema.Ref(union), ShapeTaggedUnion},
		{"list", schema.ListOf(schema.Int), ShapeList},
		{"dict", schema.DictOf(schema.String, schema.Int), ShapeDict},
		{"tuple", schema.TupleOf(schema.Int), ShapeTuple},
		{"record", schema.Ref(rec), ShapeRecord},
		{"empty record", schema.Ref(schema.NewRecord("Empty")), ShapeRecord},
		{"enum", schema.Ref(enum), ShapeEnum},
		{"crafted", schema.Ref(crafted), ShapeTaggedUnion},
		{"record and enum", schema.Ref(recordAndEnum), ShapeRecord},
		{"param", schema.Param("T"), ShapeUnknown},
		{"nil def", &schema.Named{}, ShapeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.typ); got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestDeriveRecord(t *testing.T) {
	def := schema.NewRecord("A",
		schema.NewField("x", schema.Int),
		schema.NewField("y", schema.Bool),
		schema.NewField("z", schema.String).WithDefault("abc"),
	)
	e := New[*sketch](newSketches())

	a, err := e.Derive(schema.Ref(def))
	if err != nil {
		t.Fatal(err)
	}
	if got := a.String(); got != "record:A(prim:int, prim:bool, prim:string)" {
		t.Errorf("artifact = %s", got)
	}
}

func TestDeriveUnionOptionality(t *testing.T) {
	e := New[*sketch](newSketches())

	tests := []struct {
		name string
		typ  schema.Type
		want string
	}{
		{"optional", schema.Optional(schema.Int), "optional:(prim:int)"},
		{"single branch", schema.UnionOf(schema.Int), "prim:int"},
		{"only none", schema.UnionOf(schema.None), "prim:none"},
		{"sum", schema.UnionOf(schema.Int, schema.String), "sum:int | string(prim:int, prim:string)"},
		{"optional sum", schema.UnionOf(schema.Int, schema.None, schema.String), "optional:(sum:int | string(prim:int, prim:string))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := e.Derive(tt.typ)
			if err != nil {
				t.Fatal(err)
			}
			if got := a.String(); got != tt.want {
				t.Errorf("artifact = %s, want %s", got, tt.want)
			}
		})
	}

	single, _ := e.Derive(schema.UnionOf(schema.Int))
	direct, _ := e.Derive(schema.Int)
	if single != direct {
		t.Error("a single-branch union must reuse the branch artifact")
	}
}

func TestMemoization(t *testing.T) {
	g := schema.NewRecord("G", schema.NewField("t", schema.Param("T"))).Generic("T")
	e := New[*sketch](newSketches())

	a1, err := e.Derive(schema.Ref(g, schema.Int))
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := e.Derive(schema.Ref(g, schema.Int))
	if a1 != a2 {
		t.Error("same instantiation must yield the identical artifact")
	}

	s, _ := e.Derive(schema.Ref(g, schema.String))
	if s == a1 {
		t.Error("different instantiations must not share an artifact")
	}
	if got := s.String(); got != "record:G(prim:string)" {
		t.Errorf("G[string] = %s", got)
	}

	// G[int] reached through a parameter of another generic shares the entry.
	holder := schema.NewRecord("H", schema.NewField("g", schema.Ref(g, schema.Param("U")))).Generic("U")
	h, err := e.Derive(schema.Ref(holder, schema.Int))
	if err != nil {
		t.Fatal(err)
	}
	if h.children[0] != a1 {
		t.Error("G[U] with U=int must reuse the G[int] artifact")
	}

	stats := e.Stats()
	if stats.Hits == 0 {
		t.Error("expected memo hits")
	}
}

func TestGenericBindingPropagation(t *testing.T) {
	g := schema.NewRecord("G",
		schema.NewField("t", schema.Param("T")),
		schema.NewField("ts", schema.ListOf(schema.Param("T"))),
	).Generic("T")
	g2 := schema.NewRecord("G2",
		schema.NewField("g", schema.Ref(g, schema.Param("T2"))),
		schema.NewField("swap", schema.TupleOf(schema.Param("T1"), schema.Param("T2"))),
	).Generic("T1", "T2")
	composite := schema.NewRecord("Composite",
		schema.NewField("inner", schema.Ref(g2, schema.String, schema.Optional(schema.Int))),
	)

	e := New[*sketch](newSketches())
	a, err := e.Derive(schema.Ref(composite))
	if err != nil {
		t.Fatal(err)
	}
	want := "record:Composite(record:G2(record:G(optional:(prim:int), list:(optional:(prim:int))), " +
		"tuple:tuple[T1, T2](prim:string, optional:(prim:int))))"
	if got := a.String(); got != want {
		t.Errorf("artifact =\n%s\nwant\n%s", got, want)
	}
}

func TestRecursiveTypes(t *testing.T) {
	t.Run("tagged binary tree", func(t *testing.T) {
		tree := schema.NewUnion("IntBinaryTree")
		node := schema.NewRecord("Node")
		leaf := schema.NewRecord("Leaf", schema.NewField("value", schema.Int))
		node.SetFields(
			schema.NewField("left", schema.Ref(tree)),
			schema.NewField("right", schema.Ref(tree)),
		)
		tree.AddVariant(node, leaf)

		e := New[*sketch](newSketches())
		a, err := e.Derive(schema.Ref(tree))
		if err != nil {
			t.Fatal(err)
		}
		if e.Pending() != 0 {
			t.Errorf("Pending = %d after derivation", e.Pending())
		}
		nodeArtifact := a.children[0]
		left := nodeArtifact.children[0]
		if left.cell == nil || left.resolve() != a {
			t.Error("recursive reference must forward to the finished union artifact")
		}
		if e.Stats().Backpatched != 1 {
			t.Errorf("Backpatched = %d, want 1", e.Stats().Backpatched)
		}
	})

	t.Run("generic tree through list", func(t *testing.T) {
		tree := schema.NewRecord("Tree").Generic("T")
		tree.SetFields(
			schema.NewField("value", schema.Param("T")),
			schema.NewField("children", schema.ListOf(schema.Ref(tree, schema.Param("T")))),
		)

		e := New[*sketch](newSketches())
		a, err := e.Derive(schema.Ref(tree, schema.Int))
		if err != nil {
			t.Fatal(err)
		}
		elem := a.children[1].children[0]
		if elem.resolve() != a {
			t.Error("Tree[T] inside Tree[int] must resolve to Tree[int]")
		}

		again, _ := e.Derive(schema.Ref(tree, schema.Int))
		if again != a {
			t.Error("second derivation must hit the memo")
		}
	})

	t.Run("mutual recursion", func(t *testing.T) {
		a := schema.NewRecord("A")
		b := schema.NewRecord("B")
		a.SetFields(schema.NewField("b", schema.Optional(schema.Ref(b))))
		b.SetFields(schema.NewField("a", schema.Optional(schema.Ref(a))))

		e := New[*sketch](newSketches())
		art, err := e.Derive(schema.Ref(a))
		if err != nil {
			t.Fatal(err)
		}
		bArt := art.children[0].children[0]
		back := bArt.children[0].children[0]
		if back.resolve() != art {
			t.Error("B.a must resolve back to A")
		}
		if e.Pending() != 0 {
			t.Errorf("Pending = %d", e.Pending())
		}
	})

	t.Run("generic union variants", func(t *testing.T) {
		wide := schema.NewUnion("WideTree").Generic("T")
		branch := schema.NewRecord("Branch").Generic("T")
		tip := schema.NewRecord("Tip", schema.NewField("value", schema.Param("T"))).Generic("T")
		branch.SetFields(schema.NewField("children", schema.DictOf(schema.String, schema.Ref(wide, schema.Param("T")))))
		wide.AddVariant(branch, tip)

		e := New[*sketch](newSketches())
		a, err := e.Derive(schema.Ref(wide, schema.Float))
		if err != nil {
			t.Fatal(err)
		}
		if got := a.children[1].String(); got != "record:Tip(prim:float)" {
			t.Errorf("Tip[float] = %s", got)
		}
		val := a.children[0].children[0].children[1]
		if val.resolve() != a {
			t.Error("Branch children must resolve to WideTree[float]")
		}
	})
}

func TestDeriveErrors(t *testing.T) {
	enum := schema.NewEnum("Color", "red")
	pair := schema.NewRecord("Pair",
		schema.NewField("a", schema.Param("A")),
		schema.NewField("b", schema.Param("B")),
	).Generic("A", "B")
	nest := schema.NewRecord("Nest").Generic("T")
	nest.SetFields(
		schema.NewField("value", schema.Param("T")),
		schema.NewField("deeper", schema.Optional(schema.Ref(nest, schema.ListOf(schema.Param("T"))))),
	)

	tests := []struct {
		name string
		typ  schema.Type
		kind tserrors.Kind
	}{
		{"unbound param", schema.ListOf(schema.Param("T")), tserrors.KindUnboundParam},
		{"bare param", schema.Param("T"), tserrors.KindUnboundParam},
		{"int key", schema.DictOf(schema.Int, schema.Int), tserrors.KindUnsupportedKey},
		{"record key", schema.DictOf(schema.Ref(pair, schema.Int, schema.Int), schema.Int), tserrors.KindUnsupportedKey},
		{"arity", schema.Ref(pair, schema.Int), tserrors.KindArity},
		{"missing primitive", schema.Decimal, tserrors.KindUnknownShape},
		{"empty union", schema.UnionOf(), tserrors.KindUnknownShape},
		{"foreign type", foreign{}, tserrors.KindUnknownShape},
		{"nil type", nil, tserrors.KindUnknownShape},
		{"polymorphic recursion", schema.Ref(nest, schema.Int), tserrors.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New[*sketch](newSketches())
			_, err := e.Derive(tt.typ)
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			target := &tserrors.Error{Phase: tserrors.PhaseDerive, Kind: tt.kind}
			if !errors.Is(err, target) {
				t.Errorf("error = %v, want %s", err, tt.kind)
			}
		})
	}

	t.Run("enum key accepted", func(t *testing.T) {
		e := New[*sketch](newSketches())
		a, err := e.Derive(schema.DictOf(schema.Ref(enum), schema.Int))
		if err != nil {
			t.Fatal(err)
		}
		if a.label != "Color" {
			t.Errorf("key type = %s", a.label)
		}
	})
}

func TestFailedDerivationRollsBack(t *testing.T) {
	tree := schema.NewRecord("Tree")
	tree.SetFields(
		schema.NewField("children", schema.ListOf(schema.Ref(tree))),
		schema.NewField("bad", schema.DictOf(schema.Int, schema.Int)),
	)

	e := New[*sketch](newSketches())
	before := e.Stats().Entries
	if _, err := e.Derive(schema.Ref(tree)); err == nil {
		t.Fatal("expected error")
	}
	if after := e.Stats().Entries; after != before {
		t.Errorf("memo grew from %d to %d after a failed derivation", before, after)
	}
	if e.Pending() != 0 {
		t.Errorf("Pending = %d", e.Pending())
	}
}

func TestSpecial(t *testing.T) {
	point := schema.NewRecord("Point", schema.NewField("x", schema.Int))
	custom := &sketch{kind: "custom", label: "point"}

	e := New[*sketch](newSketches())
	e.Special(schema.Ref(point), custom)

	a, err := e.Derive(schema.ListOf(schema.Ref(point)))
	if err != nil {
		t.Fatal(err)
	}
	if a.children[0] != custom {
		t.Errorf("special artifact not used: %s", a)
	}
}

func TestDeriveLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	e := New[*sketch](newSketches())
	if _, err := e.Derive(schema.ListOf(schema.Int)); err != nil {
		t.Fatal(err)
	}
	if n := logs.FilterMessage("derived artifact").Len(); n != 2 {
		t.Errorf("logged %d derivations, want 2", n)
	}
}

type foreign struct{}

func (foreign) Kind() schema.Kind { return schema.Kind(99) }
func (foreign) String() string    { return "foreign" }
