package embeddings

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestLocalEmbedDeterministic(t *testing.T) {
	embedder := NewLocal(64)

	a, err := embedder.Embed(context.Background(), "Valley Grains Cooperative Fargo")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, err := embedder.Embed(context.Background(), "Valley Grains Cooperative Fargo")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(a) != 64 {
		t.Fatalf("dims = %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestLocalEmbedUnitNorm(t *testing.T) {
	embedder := NewLocal(128)
	vector, err := embedder.Embed(context.Background(), "community food cooperative market")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", norm)
	}
}

func TestLocalEmbedSharedVocabularyScoresHigher(t *testing.T) {
	embedder := NewLocal(256)
	ctx := context.Background()

	base, _ := embedder.Embed(ctx, "rural electric cooperative serving member owners")
	similar, _ := embedder.Embed(ctx, "electric cooperative with member owners in rural counties")
	unrelated, _ := embedder.Embed(ctx, "downtown parking garage hourly rates")

	if dot(base, similar) <= dot(base, unrelated) {
		t.Error("shared vocabulary did not score higher")
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestLocalEmbedRejectsEmptyText(t *testing.T) {
	embedder := NewLocal(0)
	if embedder.Dimensions() != defaultDimensions {
		t.Errorf("dims = %d", embedder.Dimensions())
	}

	for _, text := range []string{"", "   ", "a b"} {
		_, err := embedder.Embed(context.Background(), text)
		var typed *Error
		if !errors.As(err, &typed) {
			t.Errorf("Embed(%q) error = %v, want *Error", text, err)
		}
	}
}

func TestTokenizeFiltersShortTokens(t *testing.T) {
	tokens := tokenize("Co-op of THE Valley, ND 58102!")
	want := map[string]bool{"valley": true, "the": true, "58102": true}
	for _, token := range tokens {
		if !want[token] {
			t.Errorf("unexpected token %q", token)
		}
		delete(want, token)
	}
	if len(want) != 0 {
		t.Errorf("missing tokens: %v", want)
	}
}
