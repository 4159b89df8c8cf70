package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "text-embedding-3-small"
	defaultHTTPTimeout = 30 * time.Second
)

// Client wraps an OpenAI-compatible embeddings endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	dims       int
	httpClient *http.Client
}

// Option customizes the embeddings client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithModel overrides the embedding model name.
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// WithDimensions declares the vector width the endpoint returns.
func WithDimensions(dims int) Option {
	return func(c *Client) {
		if dims > 0 {
			c.dims = dims
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs an embeddings API client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("embeddings: api key required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		dims:       1536,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Dimensions returns the configured vector width.
func (c *Client) Dimensions() int { return c.dims }

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed requests a vector for the text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &Error{Provider: "http", Reason: "empty text"}
	}

	endpoint, err := url.JoinPath(c.baseURL, "/embeddings")
	if err != nil {
		return nil, &Error{Provider: "http", Reason: "build url", Err: err}
	}
	encoded, err := json.Marshal(embeddingRequest{Model: c.model, Input: []string{text}})
	if err != nil {
		return nil, &Error{Provider: "http", Reason: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, &Error{Provider: "http", Reason: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Provider: "http", Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: "http", Reason: "read body", Err: err}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &Error{
			Provider: "http",
			Reason:   fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var decoded embeddingResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &Error{Provider: "http", Reason: "decode response", Err: err}
	}
	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		return nil, &Error{Provider: "http", Reason: "response carries no embedding"}
	}
	return decoded.Data[0].Embedding, nil
}
