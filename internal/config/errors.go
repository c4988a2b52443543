package config

import "errors"

// Configuration validation errors. All of them abort the run before any
// pipeline work starts.
var (
	// ErrMissingProviders is returned when fewer than two providers are given.
	ErrMissingProviders = errors.New("two provider names are required")

	// ErrSameProvider is returned when both providers are identical.
	ErrSameProvider = errors.New("providers must differ")

	// ErrMissingAPIKey is returned when no API key is configured outside
	// test mode. Set it via --api-key, the config file, or GEMINI_API_KEY.
	ErrMissingAPIKey = errors.New("API key is required (use --api-key, the config file, or GEMINI_API_KEY)")

	// ErrInvalidConcurrency is returned for a non-positive concurrency bound.
	ErrInvalidConcurrency = errors.New("concurrency must be positive")

	// ErrInvalidChunkSize is returned for a non-positive matching batch size.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrConflictingFormats is returned when multiple report formats are
	// selected at once.
	ErrConflictingFormats = errors.New("--markdown and --json are mutually exclusive")

	// ErrConfigNotFound is returned when an explicitly requested
	// configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
