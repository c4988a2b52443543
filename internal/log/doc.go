// Package log provides a redacting slog handler.
//
// The pipeline carries a Gemini API key through configuration and request
// URLs, and verbose logging would otherwise happily print it. RedactHandler
// wraps any slog.Handler and masks attribute values whose keys or shapes
// look like credentials before they reach the underlying handler.
package log
