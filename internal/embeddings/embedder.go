package embeddings

import (
	"context"
	"fmt"
)

// Embedder maps text to a fixed-dimension vector. Implementations must be
// deterministic for identical input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Error is the typed failure every embedder returns: the capability was
// reachable but could not produce a vector, or was not reachable at all.
type Error struct {
	Provider string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embeddings: %s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("embeddings: %s: %s", e.Provider, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }
