// Package codec pairs a derived decoder and encoder for one type with a
// wire format.
//
// An Engine holds one decoder engine and one encoder engine configured with
// the same union options, so everything a Codec writes it can read back:
//
//	eng := codec.NewEngine(codec.DefaultOptions())
//	c, err := eng.Codec(schema.Ref(point))
//	if err != nil {
//	    return err
//	}
//	v, err := c.Unmarshal([]byte(`{"x": 1, "y": true}`))
//	out, err := c.Marshal(v)
//
// Selecting decode.HOCON as the dialect reads configuration trees: lenient
// booleans, dotted field paths and absent fields handed to optional
// decoders.
package codec
