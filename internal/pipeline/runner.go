package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"coopscout/internal/config"
	"coopscout/internal/embeddings"
	"coopscout/internal/logging"
	"coopscout/internal/registry"
	"coopscout/internal/webfetch"
)

// Runner drives the pipeline stages against one registry store.
type Runner struct {
	cfg      *config.Config
	store    *registry.Store
	logger   *slog.Logger
	fetcher  webfetch.Fetcher
	embedder embeddings.Embedder
	cache    *embeddings.Cache
}

// Option overrides a Runner collaborator, mainly for tests.
type Option func(*Runner)

// WithFetcher replaces the website fetcher.
func WithFetcher(fetcher webfetch.Fetcher) Option {
	return func(r *Runner) { r.fetcher = fetcher }
}

// WithEmbedder replaces the embedding provider and disables the cache wiring.
func WithEmbedder(embedder embeddings.Embedder) Option {
	return func(r *Runner) { r.embedder = embedder }
}

// New wires a runner from configuration. Callers own the store; Close only
// releases resources the runner created itself.
func New(cfg *config.Config, store *registry.Store, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := &Runner{cfg: cfg, store: store, logger: logger}
	for _, opt := range opts {
		opt(runner)
	}

	if runner.fetcher == nil {
		runner.fetcher = webfetch.New(
			webfetch.WithTimeout(time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second),
			webfetch.WithUserAgent(cfg.Fetch.UserAgent),
		)
	}

	if runner.embedder == nil {
		embedder, err := embeddings.ForProvider(
			cfg.Embeddings.Provider,
			cfg.Embeddings.APIKey,
			cfg.Embeddings.BaseURL,
			cfg.Embeddings.Model,
			cfg.Embeddings.Dimensions,
			cfg.Embeddings.TimeoutSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("configure embedder: %w", err)
		}
		if cfg.Embeddings.CacheEnabled {
			cache, err := embeddings.OpenCache(cfg.CachePath())
			if err != nil {
				return nil, fmt.Errorf("open embedding cache: %w", err)
			}
			runner.cache = cache
			embedder = embeddings.NewCached(embedder, cache, cfg.Embeddings.Provider, runner.logger)
		}
		runner.embedder = embedder
	}

	return runner, nil
}

// Embedder exposes the wired embedding provider.
func (r *Runner) Embedder() embeddings.Embedder { return r.embedder }

// Close releases runner-owned resources.
func (r *Runner) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}
