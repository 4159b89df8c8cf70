// Package similarity ranks unresolved candidates by how close their website
// content sits to the verified cooperatives, using cosine similarity against
// a reference vector: the componentwise mean of the verified entities'
// embeddings. The reference vector is derived on demand, never stored, so it
// always reflects the current verified set.
//
// Ranking is a deterministic total order: score descending, then source
// priority, then normalized name. Candidates whose embedding failed rank
// last but are never dropped; only a human decision resolves a candidate.
package similarity
