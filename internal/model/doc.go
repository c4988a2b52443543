// Package model defines the core data structures shared across the
// comparison pipeline.
//
// This package contains:
//   - Service catalog entries and cross-provider mapping items
//   - Analysis, pricing, and synthesis result documents
//   - The consolidated run result handed to report writers
//
// Design decision: Analysis and pricing payloads are stored as
// json.RawMessage rather than fully typed structs because their shape is
// owned by the response schemas shipped with the prompt assets. The
// pipeline only ever reads the numeric score fields, which are extracted
// through dedicated accessors. This keeps schema evolution out of the
// orchestration code.
package model
