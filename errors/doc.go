// Package errors provides structured error types for the wirepb module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/wire type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("user", "age").
//		GoType("string").
//		Type("int32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownType(errors.PhaseEncode, path, "Person")
//	err := errors.TruncatedBuffer(errors.PhaseDecode, path, 8, 3)
//
// Kind-only sentinels such as ErrTruncatedBuffer match any phase:
//
//	if errors.Is(err, errors.ErrTruncatedBuffer) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
