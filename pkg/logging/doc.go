// Package logging provides structured logging utilities for gpu-intercept.
//
// The package wraps log/slog with a JSON handler writing to stderr, annotated
// with module and version, and honors the LOG_LEVEL environment variable.
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("gpu-intercept", version)
//	    slog.Info("interceptor installed", "operations", 6)
//	}
//
// Explicit level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("gpu-intercept", version, "debug")
//
// Debug logs include source location. The interception hot path only logs at
// debug level.
package logging
