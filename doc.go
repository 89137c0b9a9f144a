// Package typeshape derives decoders, encoders and metrics exporters from
// descriptions of data types.
//
// A type is described once with the schema package: records, tagged unions,
// enums, lists, dictionaries, tuples, optionals and primitives, possibly
// generic and possibly recursive. The derive package walks a description,
// classifies every part into one of these shapes and asks a family of
// combinators to build an artifact for it, reusing artifacts already built
// for the same type and bindings.
//
// # Architecture Overview
//
//	typeshape/           Root package bundling all families for one type
//	├── schema/          Type descriptors, registries, schema documents
//	├── derive/          Traversal engine, bindings, memo table, recursion
//	├── decode/          Decoder family with error accumulation (JSON, HOCON)
//	├── encode/          Encoder family
//	├── metrics/         Exporter family, flattening, Prometheus collector
//	├── codec/           Decoder and encoder paired with a wire format
//	├── wire/            JSON (with comments), YAML and CBOR value trees
//	├── witschema/       Descriptors from WebAssembly Interface Types
//	├── errors/          Structured error types
//	└── cmd/shapecheck/  Command line document checker
//
// # Quick Start
//
//	point := schema.NewRecord("Point",
//	    schema.NewField("x", schema.Int),
//	    schema.NewField("y", schema.Bool),
//	    schema.NewField("z", schema.String).WithDefault("abc"),
//	)
//
//	a, err := typeshape.New(codec.DefaultOptions()).Derive(schema.Ref(point))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := a.Codec.Unmarshal([]byte(`{"x": 1, "y": true}`))
//	// v is a *schema.Object with z set to "abc"
//
//	ms := metrics.Flatten("point", a.Exporter.Export(v))
//
// # Errors
//
// Derivation problems (unbound type parameters, unsupported dictionary keys,
// clashing tag fields) are returned by Derive as *errors.Error. Decoding
// never stops at the first problem: a *decode.Failure lists every invalid
// part of the input with its path.
//
// # Thread Safety
//
// Engines serialize derivation. Derived artifacts are immutable and safe for
// concurrent use.
package typeshape
