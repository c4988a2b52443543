// Package prompt ships the prompt templates and response schemas used by
// the pipeline stages.
//
// Templates and schemas are embedded at build time so the binary is
// self-contained. Schemas are kept as raw JSON and passed to the model
// API verbatim; they are never interpreted by this program.
package prompt
