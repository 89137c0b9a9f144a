// Package errors provides structured error types for the typeshape module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: location path, type name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDerive, errors.KindArity).
//		Path("Pair").
//		Type("Pair[int]").
//		Detail("expected %d type arguments, got %d", 2, 1).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnboundParam(path, "T")
//	err := errors.UnknownVariant(errors.PhaseEncode, "Shape", v, known)
//
// Value-level decode failures are not reported with this type; they are
// accumulated by the decode package. Errors here are configuration errors
// raised while deriving artifacts, and fatal encode errors.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
