package similarity

import "math"

// Cosine returns the cosine similarity of two vectors, bounded in [-1, 1].
// Mismatched lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Guard against floating point drift past the bounds.
	return math.Max(-1, math.Min(1, similarity))
}

// mean returns the componentwise mean of the vectors.
func mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	out := make([]float32, len(vectors[0]))
	for _, vector := range vectors {
		for i, v := range vector {
			out[i] += v
		}
	}
	scale := float32(1) / float32(len(vectors))
	for i := range out {
		out[i] *= scale
	}
	return out
}
