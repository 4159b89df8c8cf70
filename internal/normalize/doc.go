// Package normalize converts raw source records into registry candidates.
//
// Normalization is where heterogeneous feeds become comparable: website URLs
// collapse to a canonical host form (the primary dedup key), names collapse
// to a punctuation-free key (the fallback key), and a fixed ordered rule
// table assigns every candidate a category. Both normalizations are pure and
// idempotent so re-running the pipeline can never produce new keys for old
// data.
package normalize
