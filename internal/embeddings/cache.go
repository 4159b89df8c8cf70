package embeddings

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"coopscout/internal/logging"
)

// Cache persists vectors in SQLite keyed by content hash and provider, so
// re-ranking an unchanged registry never re-embeds anything.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache initializes or connects to the cache database.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS embeddings (
        content_hash TEXT NOT NULL,
        provider     TEXT NOT NULL,
        dims         INTEGER NOT NULL,
        vector       TEXT NOT NULL,
        created_at   TEXT NOT NULL,
        PRIMARY KEY (content_hash, provider)
    )`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ContentHash returns the cache key for a piece of text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector, if present.
func (c *Cache) Get(ctx context.Context, hash, provider string) ([]float32, bool, error) {
	var encoded string
	err := c.db.QueryRowContext(
		ctx,
		`SELECT vector FROM embeddings WHERE content_hash = ? AND provider = ?`,
		hash, provider,
	).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var vector []float32
	if err := json.Unmarshal([]byte(encoded), &vector); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return vector, true, nil
}

// Put stores a vector. Existing entries are replaced.
func (c *Cache) Put(ctx context.Context, hash, provider string, vector []float32) error {
	encoded, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	_, err = c.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO embeddings (content_hash, provider, dims, vector, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		hash, provider, len(vector), string(encoded), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Cached wraps an embedder with the cache. Cache read or write failures are
// logged as warnings; the wrapped embedder is always the source of truth.
type Cached struct {
	inner    Embedder
	cache    *Cache
	provider string
	logger   *slog.Logger
}

// NewCached wraps the embedder with cache lookups under the provider name.
// A nil logger silences the cache-failure warnings.
func NewCached(inner Embedder, cache *Cache, provider string, logger *slog.Logger) *Cached {
	return &Cached{
		inner:    inner,
		cache:    cache,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "embed-cache"),
	}
}

// Dimensions returns the wrapped embedder's vector width.
func (c *Cached) Dimensions() int { return c.inner.Dimensions() }

// Embed returns the cached vector when available, embedding and storing
// otherwise.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := ContentHash(text)
	cached, ok, err := c.cache.Get(ctx, hash, c.provider)
	if err != nil {
		c.logger.Warn("embedding cache read failed", logging.Error(err))
	}
	if ok {
		return cached, nil
	}
	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(ctx, hash, c.provider, vector); err != nil {
		c.logger.Warn("embedding cache write failed", logging.Error(err))
	}
	return vector, nil
}
