package codec

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/typeshape/decode"
	"github.com/wippyai/typeshape/schema"
	"github.com/wippyai/typeshape/wire"
)

func orderDef() *schema.Def {
	shape := schema.NewUnion("Shape",
		schema.NewRecord("C1", schema.NewField("a", schema.Int)),
		schema.NewRecord("C2", schema.NewField("b", schema.String)),
	)
	return schema.NewRecord("Order",
		schema.NewField("id", schema.Int),
		schema.NewField("shape", schema.Ref(shape)),
		schema.NewField("tags", schema.ListOf(schema.String)),
	)
}

func mustCodec(t *testing.T, opts Options, typ schema.Type) *Codec {
	t.Helper()
	c, err := NewEngine(opts).Codec(typ)
	if err != nil {
		t.Fatalf("Codec(%s) error: %v", typ, err)
	}
	return c
}

func TestJSONRoundTrip(t *testing.T) {
	c := mustCodec(t, DefaultOptions(), schema.Ref(orderDef()))

	v, err := c.Unmarshal([]byte(`{
		// comment
		"id": 7,
		"shape": {"Shape": "C2", "b": "x"},
		"tags": ["a"],
	}`))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	out, err := c.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{
  "id": 7,
  "shape": {
    "Shape": "C2",
    "b": "x"
  },
  "tags": [
    "a"
  ]
}
`
	if string(out) != want {
		t.Errorf("got\n%s\nwant\n%s", out, want)
	}
}

func TestNestedPayload(t *testing.T) {
	opts := DefaultOptions()
	opts.TagField = "tag"
	opts.ValueField = "value"
	c := mustCodec(t, opts, schema.Ref(orderDef()))

	v, err := c.Decode(map[string]any{
		"id":    1,
		"shape": map[string]any{"tag": "C1", "value": map[string]any{"a": 3}},
		"tags":  []any{},
	})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	tree, err := c.Encode(v)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	shape := tree.(map[string]any)["shape"]
	want := map[string]any{"tag": "C1", "value": map[string]any{"a": int64(3)}}
	if !reflect.DeepEqual(shape, want) {
		t.Errorf("got %v, want %v", shape, want)
	}
}

func TestFailure(t *testing.T) {
	c := mustCodec(t, DefaultOptions(), schema.Ref(orderDef()))

	_, err := c.Unmarshal([]byte(`{"id": "seven", "shape": {"Shape": "C9"}, "tags": [1, "b"]}`))
	var failure *decode.Failure
	if !stderrors.As(err, &failure) {
		t.Fatalf("expected *decode.Failure, got %v", err)
	}
	if len(failure.Errors) != 3 {
		t.Errorf("got %d errors: %v", len(failure.Errors), failure.Errors.Strings())
	}
	if !strings.HasPrefix(err.Error(), "Found 3 errors while validating JSON: [") {
		t.Errorf("got %q", err.Error())
	}

	if _, err := c.Unmarshal([]byte(`{"id":`)); err == nil || stderrors.As(err, &failure) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestNoneRoundTrip(t *testing.T) {
	rec := schema.NewRecord("R",
		schema.NewField("n", schema.None),
		schema.NewField("l", schema.ListOf(schema.None)),
	)
	c := mustCodec(t, DefaultOptions(), schema.Ref(rec))

	v, err := c.Decode(map[string]any{"n": nil, "l": []any{nil, nil}})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	enc, err := c.Encode(v)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := map[string]any{"n": map[string]any{}, "l": []any{map[string]any{}, map[string]any{}}}
	if !reflect.DeepEqual(enc, want) {
		t.Fatalf("encoded %#v, want %#v", enc, want)
	}
	back, err := c.Decode(enc)
	if err != nil {
		t.Fatalf("decoding the encoded value: %v", err)
	}
	if !reflect.DeepEqual(back, v) {
		t.Errorf("round trip gave %#v, want %#v", back, v)
	}
}

func TestIntOutOfRange(t *testing.T) {
	rec := schema.NewRecord("Counter", schema.NewField("n", schema.Int))
	for _, tt := range []struct {
		format wire.Format
		data   string
	}{
		{wire.JSON, `{"n": 18446744073709551615}`},
		{wire.JSON, `{"n": 1e30}`},
		{wire.YAML, "n: 18446744073709551615\n"},
	} {
		t.Run(string(tt.format), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Format = tt.format
			_, err := mustCodec(t, opts, schema.Ref(rec)).Unmarshal([]byte(tt.data))
			var failure *decode.Failure
			if !stderrors.As(err, &failure) || len(failure.Errors) != 1 {
				t.Fatalf("expected one decode error, got %v", err)
			}
			if got := decode.Path(failure.Errors[0]); got != ".n" {
				t.Errorf("path = %q", got)
			}
		})
	}
}

func TestHOCONFromYAML(t *testing.T) {
	def := schema.NewRecord("Server",
		schema.NewField("net.port", schema.Int),
		schema.NewField("debug", schema.Bool),
		schema.NewField("name", schema.Optional(schema.String)),
	)
	c := mustCodec(t, Options{Dialect: decode.HOCON, Format: wire.YAML}, schema.Ref(def))

	v, err := c.Unmarshal([]byte("net:\n  port: 8080\ndebug: \"yes\"\n"))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	fields := v.(*schema.Object).Fields
	if fields["net.port"] != int64(8080) || fields["debug"] != true || fields["name"] != nil {
		t.Errorf("got %v", fields)
	}

	_, err = c.Unmarshal([]byte("debug: 2\n"))
	if err == nil || !strings.Contains(err.Error(), "validating HOCON") {
		t.Errorf("got %v", err)
	}
}

func TestCBOR(t *testing.T) {
	c := mustCodec(t, Options{Format: wire.CBOR}, schema.Ref(orderDef()))
	if c.Format() != wire.CBOR {
		t.Fatalf("format = %s", c.Format())
	}

	v := schema.NewObject("Order", map[string]any{
		"id":    int64(9),
		"shape": schema.NewObject("C1", map[string]any{"a": int64(-1)}),
		"tags":  []any{"x", "y"},
	})
	data, err := c.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	back, err := c.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !reflect.DeepEqual(back, v) {
		t.Errorf("got %v, want %v", back, v)
	}
}

type server struct {
	Host string
	Port int64
}

func TestUnmarshalAs(t *testing.T) {
	def := schema.NewRecord("Server",
		schema.NewField("host", schema.String),
		schema.NewField("port", schema.Int).WithDefault(int64(80)),
	).Bind(schema.Struct[server]())
	c := mustCodec(t, DefaultOptions(), schema.Ref(def))

	got, err := UnmarshalAs[server](c, []byte(`{"host": "example.org"}`))
	if err != nil {
		t.Fatalf("UnmarshalAs error: %v", err)
	}
	if want := (server{Host: "example.org", Port: 80}); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	out, err := c.Marshal(&got)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(out), `"port": 80`) {
		t.Errorf("got %s", out)
	}
}

func TestSharedArtifacts(t *testing.T) {
	eng := NewEngine(Options{})
	if eng.Options().Dialect.Format != "JSON" || eng.Options().Format != wire.JSON {
		t.Errorf("defaults not applied: %+v", eng.Options())
	}
	def := orderDef()
	a, err := eng.Codec(schema.Ref(def))
	if err != nil {
		t.Fatal(err)
	}
	b, err := eng.Codec(schema.Ref(def))
	if err != nil {
		t.Fatal(err)
	}
	if a.Decoder() != b.Decoder() || a.Encoder() != b.Encoder() {
		t.Error("expected memoized artifacts")
	}
}

func TestRoot(t *testing.T) {
	def := schema.NewRecord("HTTP", schema.NewField("port", schema.Int))
	c := mustCodec(t, Options{Format: wire.YAML, Root: "server.http"}, schema.Ref(def))

	v, err := c.Unmarshal([]byte("server:\n  http:\n    port: 8080\n"))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got := v.(*schema.Object).Fields["port"]; got != int64(8080) {
		t.Errorf("port = %v", got)
	}
	if _, err := c.Unmarshal([]byte("server: {}\n")); err == nil {
		t.Error("expected an error for a missing root")
	}
}
