// Package schema describes data types by shape.
//
// A Type is one of a closed set of descriptor nodes: Primitive, Param, Union,
// List, Dict, Tuple and Named. Named applies a Def (record, sealed union or
// enum) to type arguments. Descriptors are built in Go:
//
//	point := schema.NewRecord("Point",
//		schema.NewField("x", schema.Int),
//		schema.NewField("y", schema.Int),
//		schema.NewField("label", schema.String).WithDefault("origin"),
//	)
//	shape := schema.NewUnion("Shape", circle, square)
//
// or loaded from a YAML document with LoadYAML, where field types are written
// as type expressions (see ParseExpr).
//
// Record values are produced and consumed through a Binding. The default
// binding uses *Object; Struct binds a definition to a Go struct.
package schema
