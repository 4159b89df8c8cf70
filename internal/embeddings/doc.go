// Package embeddings provides the embedder capability: mapping free text to
// fixed-dimension vectors for similarity ranking.
//
// Two implementations are available. The HTTP client talks to an
// OpenAI-compatible /embeddings endpoint. The local embedder derives a
// deterministic term-frequency vector from the text itself; it needs no
// network or credentials and keeps ranking reproducible in tests. Either can
// be wrapped with the SQLite-backed Cache so unchanged content is never
// re-embedded.
//
// Embedding the same text always yields the same vector, and failures
// surface as a typed *Error rather than a silent zero vector.
package embeddings
