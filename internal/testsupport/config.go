package testsupport

import (
	"path/filepath"
	"testing"

	"coopscout/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The local embedder is selected so no test needs credentials or network.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Embeddings.Provider = "local"
	cfg.Embeddings.CacheEnabled = false
	cfg.Fetch.Concurrency = 2
	cfg.Ranking.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithEmbeddingCache enables the sqlite embedding cache on the test config.
func WithEmbeddingCache() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Embeddings.CacheEnabled = true
	}
}
