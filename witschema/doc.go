// Package witschema derives type descriptors from WebAssembly Interface
// Type (WIT) definitions, so values crossing a component boundary can be
// decoded, encoded and exported with the same families as any other type.
//
// Records, enums, flags, variants and results become definitions. Variants
// and results become tagged unions whose variant names are the case names;
// a case payload lives in the "value" field of its variant record.
//
//	t, err := witschema.Convert(fn.Params[0].Type)
//	dec, err := decode.NewEngine(decode.JSON, decode.DefaultOptions()).Derive(t)
//
// LoadFile reads a whole WIT document and registers its named definitions,
// so type expressions such as "list[item]" resolve against it.
package witschema
