package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const defaultDimensions = 256

// tokenSplitPattern matches non-alphanumeric character sequences for
// tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Local is a deterministic embedder that hashes term frequencies into a
// fixed-dimension unit vector. Texts sharing vocabulary score close under
// cosine similarity, which is enough signal for offline use and for
// reproducible ranking tests.
type Local struct {
	dims int
}

// NewLocal creates a local embedder. Non-positive dimensions fall back to
// the default.
func NewLocal(dims int) *Local {
	if dims <= 0 {
		dims = defaultDimensions
	}
	return &Local{dims: dims}
}

// Dimensions returns the vector width.
func (l *Local) Dimensions() int { return l.dims }

// Embed produces the term-frequency vector for the text. Empty or
// token-free text is a typed error, never a zero vector.
func (l *Local) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, &Error{Provider: "local", Reason: "text has no tokens"}
	}

	vector := make([]float32, l.dims)
	for _, token := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()
		bucket := int(sum % uint32(l.dims))
		// Half the hash decides sign so common tokens do not all pile into
		// the positive orthant.
		if sum&0x80000000 != 0 {
			vector[bucket]--
		} else {
			vector[bucket]++
		}
	}

	return unitNorm(vector), nil
}

// tokenize lowercases text, splits on non-alphanumeric runs, and filters
// tokens shorter than 3 characters.
func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

func unitNorm(vector []float32) []float32 {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vector
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
	return vector
}
