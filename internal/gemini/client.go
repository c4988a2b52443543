package gemini

import (
	"context"
	"encoding/json"
)

// Request describes one generateContent call.
type Request struct {
	// Model is the model identifier (e.g., "gemini-3-pro-preview").
	Model string

	// System is the system instruction. The client prepends a current
	// timestamp preamble so the model can reason about "now" when
	// grounding queries against fresh sources.
	System string

	// User is the user content for the request.
	User string

	// Schema is the raw JSON response schema. When non-nil the request
	// asks for structured JSON output conforming to it.
	Schema json.RawMessage

	// Grounding enables the Google Search tool for the request.
	Grounding bool

	// Thinking enables extended reasoning for the request.
	Thinking bool
}

// Client is the inference boundary every pipeline stage depends on.
//
// Generate returns the decoded JSON payload, or a nil payload with a
// non-nil error once the retry budget is exhausted. Callers must treat
// that as "no result" and degrade (drop the pair, fall back the chunk),
// never abort the run.
type Client interface {
	Generate(ctx context.Context, req Request) (json.RawMessage, error)
}
