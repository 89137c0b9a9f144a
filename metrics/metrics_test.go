package metrics

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/wippyai/typeshape/schema"
)

func mustExporter(t *testing.T, typ schema.Type) Exporter {
	t.Helper()
	e, err := NewEngine().Derive(typ)
	if err != nil {
		t.Fatalf("Derive(%s) error: %v", typ, err)
	}
	return e
}

func orderDef() *schema.Def {
	item := schema.NewRecord("Item",
		schema.NewField("sku", schema.String),
		schema.NewField("count", schema.Int),
	)
	shape := schema.NewUnion("Shape",
		schema.NewRecord("C1", schema.NewField("a", schema.Int)),
		schema.NewRecord("C2", schema.NewField("b", schema.String)),
	)
	return schema.NewRecord("Order",
		schema.NewField("id", schema.String),
		schema.NewField("qty", schema.Int),
		schema.NewField("price", schema.Decimal),
		schema.NewField("paid", schema.Bool),
		schema.NewField("when", schema.Date),
		schema.NewField("note", schema.Optional(schema.String)),
		schema.NewField("items", schema.ListOf(schema.Ref(item))),
		schema.NewField("shape", schema.Ref(shape)),
	)
}

func orderValue() *schema.Object {
	return schema.NewObject("Order", map[string]any{
		"id":    "o1",
		"qty":   int64(2),
		"price": decimal.RequireFromString("9.5"),
		"paid":  true,
		"when":  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		"note":  nil,
		"items": []any{
			schema.NewObject("Item", map[string]any{"sku": "a", "count": int64(1)}),
		},
		"shape": schema.NewObject("C1", map[string]any{"a": int64(3)}),
	})
}

func TestExportTree(t *testing.T) {
	tree := mustExporter(t, schema.Ref(orderDef())).Export(orderValue())

	named, ok := tree.(Named)
	if !ok {
		t.Fatalf("expected Named, got %T", tree)
	}
	byName := make(map[string]Tree)
	for _, c := range named.Children {
		byName[c.Name] = c.Tree
	}

	tests := []struct {
		field string
		want  Tree
	}{
		{"id", Tag{Value: "o1"}},
		{"qty", Leaf{Value: 2}},
		{"price", Leaf{Value: 9.5}},
		{"paid", Tag{Value: "yes"}},
		{"note", Tag{Postfix: "_present", Value: "no"}},
		{"when", Unnamed{Children: []Tree{
			Tag{Postfix: "_day", Value: "5"},
			Tag{Postfix: "_month", Value: "3"},
			Tag{Postfix: "_year", Value: "2024"},
			Tag{Postfix: "_weekday", Value: "Tuesday"},
		}}},
		{"shape", Unnamed{Children: []Tree{
			Tag{Postfix: "_Shape", Value: "C1"},
			Named{Children: []Child{{Name: "a", Tree: Leaf{Value: 3}}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := byName[tt.field]; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	tree := mustExporter(t, schema.Ref(orderDef())).Export(orderValue())
	ms := Flatten("order", tree)

	type flat struct {
		name    string
		value   float64
		lineage []string
	}
	var got []flat
	for _, m := range ms {
		f := flat{name: m.Name, value: m.Value}
		for _, c := range m.Lineage {
			f.lineage = append(f.lineage, c.Name)
		}
		got = append(got, f)
	}
	want := []flat{
		{"qty", 2, []string{"order"}},
		{"price", 9.5, []string{"order"}},
		{"count", 1, []string{"items", "order"}},
		{"a", 3, []string{"shape", "order"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}

	root := ms[0].Lineage[0].Properties
	wantRoot := map[string]string{
		"id":           "o1",
		"paid":         "yes",
		"note_present": "no",
		"when_day":     "5",
		"when_month":   "3",
		"when_year":    "2024",
		"when_weekday": "Tuesday",
		"shape_Shape":  "C1",
	}
	if !reflect.DeepEqual(root, wantRoot) {
		t.Errorf("root properties = %v, want %v", root, wantRoot)
	}
	if item := ms[2].Lineage[0].Properties; !reflect.DeepEqual(item, map[string]string{"sku": "a"}) {
		t.Errorf("item properties = %v", item)
	}
	if ms[2].Lineage[1] != ms[0].Lineage[0] {
		t.Error("metrics under one record must share its context")
	}
}

func TestFlattenEdges(t *testing.T) {
	tests := []struct {
		name string
		tree Tree
		want int
	}{
		{"leaf", Leaf{Value: 1}, 1},
		{"tag", Tag{Value: "x"}, 0},
		{"unnamed leaves", Unnamed{Children: []Tree{Leaf{Value: 1}, Leaf{Value: 2}, Tag{Value: "t"}}}, 2},
		{"empty", Unnamed{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Flatten("root", tt.tree)); got != tt.want {
				t.Errorf("got %d metrics, want %d", got, tt.want)
			}
		})
	}
}

func TestPriorityAndDicts(t *testing.T) {
	t.Run("priority picks accepting branch", func(t *testing.T) {
		exp := mustExporter(t, schema.UnionOf(schema.String, schema.Int))
		if got := exp.Export(int64(4)); !reflect.DeepEqual(got, Leaf{Value: 4}) {
			t.Errorf("got %#v", got)
		}
		if got := exp.Export("s"); !reflect.DeepEqual(got, Tag{Value: "s"}) {
			t.Errorf("got %#v", got)
		}
	})

	t.Run("optional present", func(t *testing.T) {
		exp := mustExporter(t, schema.Optional(schema.Float))
		want := Unnamed{Children: []Tree{Tag{Postfix: "_present", Value: "yes"}, Leaf{Value: 1.5}}}
		if got := exp.Export(1.5); !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v", got)
		}
	})

	t.Run("enum keyed dict", func(t *testing.T) {
		color := schema.NewEnumCases("Color",
			schema.EnumCase{Label: "red", Value: 1},
			schema.EnumCase{Label: "green", Value: 2},
		)
		exp := mustExporter(t, schema.DictOf(schema.Ref(color), schema.Int))
		want := Named{Children: []Child{
			{Name: "green", Tree: Leaf{Value: 20}},
			{Name: "red", Tree: Leaf{Value: 10}},
		}}
		if got := exp.Export(map[any]any{1: int64(10), 2: int64(20)}); !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v", got)
		}
	})

	t.Run("mismatched value exports nothing", func(t *testing.T) {
		exp := mustExporter(t, schema.Ref(orderDef()))
		if got := exp.Export("not an order"); !reflect.DeepEqual(got, Unnamed{}) {
			t.Errorf("got %#v", got)
		}
	})
}

func TestAnyExport(t *testing.T) {
	exp := mustExporter(t, schema.Any)
	tests := []struct {
		name string
		in   any
		want Tree
	}{
		{"int", int64(3), Leaf{Value: 3}},
		{"json number", json.Number("2.5"), Leaf{Value: 2.5}},
		{"decimal", decimal.RequireFromString("1.5"), Leaf{Value: 1.5}},
		{"string", "s", Tag{Value: "s"}},
		{"bool", false, Tag{Value: "no"}},
		{"nil", nil, Unnamed{}},
		{"object", map[string]any{"k": 1}, Unnamed{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exp.Export(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRecursiveExport(t *testing.T) {
	node := schema.NewRecord("Node")
	node.SetFields(
		schema.NewField("size", schema.Int),
		schema.NewField("kids", schema.ListOf(schema.Ref(node))),
	)
	exp := mustExporter(t, schema.Ref(node))

	v := schema.NewObject("Node", map[string]any{"size": int64(1), "kids": []any{
		schema.NewObject("Node", map[string]any{"size": int64(2), "kids": []any{}}),
	}})
	ms := Flatten("tree", exp.Export(v))
	if len(ms) != 2 || ms[1].Name != "size" || len(ms[1].Lineage) != 2 {
		t.Errorf("got %+v", ms)
	}
}

func statsDef() *schema.Def {
	item := schema.NewRecord("Item",
		schema.NewField("sku", schema.String),
		schema.NewField("count", schema.Int),
	)
	return schema.NewRecord("Stats",
		schema.NewField("host", schema.String),
		schema.NewField("load", schema.Float),
		schema.NewField("items", schema.ListOf(schema.Ref(item))),
	)
}

func statsValue() *schema.Object {
	item := func(sku string, n int64) *schema.Object {
		return schema.NewObject("Item", map[string]any{"sku": sku, "count": n})
	}
	return schema.NewObject("Stats", map[string]any{
		"host":  "h1",
		"load":  0.5,
		"items": []any{item("a", 1), item("b", 2), item("a", 3)},
	})
}

func TestCollector(t *testing.T) {
	exp := mustExporter(t, schema.Ref(statsDef()))
	c := NewCollector("stats", exp, func() (any, error) { return statsValue(), nil })

	expected := `
# HELP stats_items_count Exported from field stats_items_count.
# TYPE stats_items_count gauge
stats_items_count{host="h1",sku="a"} 4
stats_items_count{host="h1",sku="b"} 2
# HELP stats_load Exported from field stats_load.
# TYPE stats_load gauge
stats_load{host="h1"} 0.5
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "stats_items_count", "stats_load"); err != nil {
		t.Error(err)
	}
	if n := testutil.CollectAndCount(c); n != 3 {
		t.Errorf("CollectAndCount = %d, want 3", n)
	}
}

func TestCollectorSourceError(t *testing.T) {
	exp := mustExporter(t, schema.Ref(statsDef()))
	c := NewCollector("stats", exp, func() (any, error) { return nil, errors.New("unavailable") })

	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Gather(); err == nil || !strings.Contains(err.Error(), "unavailable") {
		t.Errorf("expected source error from Gather, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"net.port": "net_port",
		"9lives":   "_9lives",
		"__name":   "_name",
		"ok_name":  "ok_name",
	}
	for in, want := range tests {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
