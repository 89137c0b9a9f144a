// Package decode derives decoders from type descriptors.
//
// A Decoder turns an external value (the generic tree produced by the wire
// package) into a typed value. Decoding never stops at the first problem:
// records, tuples, lists and dictionaries try every component and return
// every failure, each located with InField and InIndex so it renders as a
// path such as ".items[2].price".
//
// Family implements derive.Combinators for one Dialect. JSON and HOCON are
// provided; they share every decoder and differ only in messages, boolean
// leniency, dotted field paths and how missing fields reach optional
// decoders.
//
//	eng := decode.NewEngine(decode.JSON, decode.DefaultOptions())
//	dec, err := eng.Derive(schema.Ref(point))
//	if err != nil {
//	    return err
//	}
//	v, err := decode.Read(dec, tree, "JSON")
package decode
