package embeddings

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "embeddings.db"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	hash := ContentHash("valley grains cooperative")
	vector := []float32{0.5, -0.25, 0.125}

	if _, ok, err := cache.Get(ctx, hash, "local"); err != nil || ok {
		t.Fatalf("unexpected hit before put: ok=%v err=%v", ok, err)
	}

	if err := cache.Put(ctx, hash, "local", vector); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := cache.Get(ctx, hash, "local")
	if err != nil || !ok {
		t.Fatalf("Get after put: ok=%v err=%v", ok, err)
	}
	if len(got) != 3 || got[0] != 0.5 || got[2] != 0.125 {
		t.Errorf("vector = %v", got)
	}

	// Same text under another provider is a separate entry.
	if _, ok, _ := cache.Get(ctx, hash, "openai"); ok {
		t.Error("provider keys not isolated")
	}
}

type countingEmbedder struct {
	inner Embedder
	calls int
}

func (c *countingEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func TestCachedEmbedsOnce(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "embeddings.db"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	counting := &countingEmbedder{inner: NewLocal(32)}
	cached := NewCached(counting, cache, "local", nil)

	ctx := context.Background()
	first, err := cached.Embed(ctx, "community food cooperative")
	if err != nil {
		t.Fatalf("first embed: %v", err)
	}
	second, err := cached.Embed(ctx, "community food cooperative")
	if err != nil {
		t.Fatalf("second embed: %v", err)
	}

	if counting.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", counting.calls)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached vector differs at %d", i)
		}
	}
}

func TestCachedPropagatesErrors(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "embeddings.db"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	cached := NewCached(NewLocal(32), cache, "local", nil)
	if _, err := cached.Embed(context.Background(), ""); err == nil {
		t.Fatal("empty text accepted")
	}
}

func TestCachedSurvivesCacheFailure(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "embeddings.db"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A closed cache fails both reads and writes; embedding still works and
	// the failures are surfaced as warnings.
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cached := NewCached(NewLocal(32), cache, "local", logger)

	vector, err := cached.Embed(context.Background(), "community food cooperative")
	if err != nil {
		t.Fatalf("embed with broken cache: %v", err)
	}
	if len(vector) != 32 {
		t.Errorf("vector width = %d, want 32", len(vector))
	}
	logged := buf.String()
	if !strings.Contains(logged, "cache read failed") || !strings.Contains(logged, "cache write failed") {
		t.Errorf("cache failures not logged:\n%s", logged)
	}
}
