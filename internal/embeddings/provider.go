package embeddings

import (
	"fmt"
	"strings"
	"time"
)

// ForProvider constructs an embedder by provider name. "local" (and the
// empty default) needs no credentials; "openai" talks to an OpenAI-compatible
// endpoint with the given per-request timeout in seconds.
func ForProvider(provider, apiKey, baseURL, model string, dims, timeoutSeconds int) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "local", "":
		return NewLocal(dims), nil
	case "openai", "http":
		opts := []Option{
			WithBaseURL(baseURL),
			WithModel(model),
			WithDimensions(dims),
			WithTimeout(time.Duration(timeoutSeconds) * time.Second),
		}
		return NewClient(apiKey, opts...)
	default:
		return nil, fmt.Errorf("embeddings: unknown provider %q", provider)
	}
}
