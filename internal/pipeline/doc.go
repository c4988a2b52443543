// Package pipeline orchestrates the comparison run.
//
// A run moves every matched service pair through a fixed stage sequence:
// technical analysis and pricing analysis (independent of each other,
// both cache-aware), then synthesis, then domain-level aggregation and
// management summaries. A pair whose analysis fails is dropped from all
// downstream stages with a warning; it never aborts the run. The only
// fatal pipeline condition is both providers' catalogs failing to
// resolve, since no meaningful output is possible without input.
//
// Concurrency model: every matched pair runs as its own task, fanned in
// with errgroup. All inference calls across all tiers (matching,
// analysis, sovereignty, summaries) acquire one shared weighted
// semaphore, so total in-flight requests against the inference service
// never exceed the configured budget regardless of tier.
//
// Every expensive stage result is cached under a content-derived key, so
// a re-run with a fresh cache replays stored documents and performs zero
// inference calls.
package pipeline
