// Package gemini provides the client for the Gemini generateContent API.
//
// All pipeline stages talk to the model through the Client interface, which
// hides retry handling, response decoding, and request shaping. The HTTP
// implementation supports structured JSON output via response schemas,
// Google Search grounding, and extended thinking.
//
// Design decision: We call the REST API directly instead of using an SDK
// because response schemas are shipped as raw JSON asset files and passed
// to the API verbatim (responseJsonSchema). An SDK would force a lossy
// round-trip through its typed schema representation. The direct client
// also keeps the transport injectable, so the retry loop is testable
// without network access or real delays.
package gemini
