// Package cache provides SQLite-based storage for pipeline stage results.
//
// Every expensive inference result (service lists, the service map,
// per-pair analyses, syntheses, and summaries) is stored under an opaque
// string key so that re-running the pipeline replays cached documents
// instead of re-deriving them. Entries expire after a configurable TTL.
//
// Design decision: We use SQLite (via modernc.org/sqlite) with one row per
// key instead of one JSON file per key because:
// 1. No external dependencies - the cache is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Writes are atomic at the row level, so a concurrent read never
//    observes a partial document
// 4. WAL mode provides good concurrent read performance
//
// A payload that is null, an empty object, or an empty array is never
// persisted and never returned as a hit. This distinguishes "no data yet"
// from "empty result" and prevents a transient empty response from
// poisoning future runs.
package cache
