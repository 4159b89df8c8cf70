// Package registry is the durable store of every organization the pipeline
// has ever seen, together with its lifecycle state and the precision
// statistics accumulated across review sessions.
//
// Entities move pending -> verified or pending -> rejected and never back.
// Terminal entities are archived, not deleted, so audit history survives
// re-ingestion. The Store persists the full registry as a single JSON
// snapshot committed with a write-new-then-rename discipline: a crash during
// a write leaves the previous valid snapshot intact. A flock beside the
// snapshot enforces the single-writer assumption.
package registry
