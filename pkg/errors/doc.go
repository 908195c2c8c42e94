// Package errors provides structured error types for better observability
// and programmatic error handling across the interception layer.
//
// Failures of the underlying GPU runtime surface as ErrCodeRuntime, calls into
// deprecated entry points as ErrCodeDeprecated. Both are treated as fatal by the
// interceptor's default policy.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeRuntime,
//	    "runtime call failed",
//	    cause,
//	    map[string]any{
//	        "operation": "MemoryPoolAllocate",
//	        "size":      size,
//	    },
//	)
//
//	if errors.CodeOf(err) == errors.ErrCodeRuntime {
//	    // terminate
//	}
package errors
