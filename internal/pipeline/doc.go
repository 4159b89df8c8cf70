// Package pipeline sequences the discovery stages: feed ingestion through
// normalization and dedup into the registry, then content fetch, similarity
// ranking, and queue assembly for review.
//
// The Runner owns stage wiring and commits registry snapshots at stage
// boundaries, so a crash between stages never leaves a half-written registry.
package pipeline
