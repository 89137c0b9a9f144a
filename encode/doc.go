// Package encode derives encoders from type descriptors. Encoders produce the
// generic external tree understood by the wire package, and for the same
// Options they produce exactly what the matching decoders accept.
package encode
