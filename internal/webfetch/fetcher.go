// Package webfetch provides the web fetch capability: retrieving website
// text for similarity scoring, with per-request timeouts and a typed error
// taxonomy. A failed fetch marks a candidate content-unavailable; it never
// aborts the batch.
package webfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "coopscout/1.0 (+registry content fetch)"
	maxBodyBytes     = 512 * 1024
)

// ErrorKind classifies fetch failures.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"
	KindNetwork    ErrorKind = "network"
	KindHTTPClient ErrorKind = "http4xx"
	KindHTTPServer ErrorKind = "http5xx"
)

// Error is the typed fetch failure.
type Error struct {
	URL    string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("webfetch: %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("webfetch: %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("webfetch: %s: %s", e.URL, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Result carries the extracted text of one page.
type Result struct {
	URL     string
	Status  int
	Content string
}

// Fetcher retrieves website text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Result, error)
}

// Client is the HTTP fetcher.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

// Option customizes the fetcher.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent sets the request user agent.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		agent = strings.TrimSpace(agent)
		if agent != "" {
			c.userAgent = agent
		}
	}
}

// New constructs a fetcher.
func New(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Fetch retrieves the page and extracts its visible text. Registry websites
// are stored scheme-less, so https is assumed and plain http retried on
// connection failure.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Result, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return Result{}, &Error{URL: rawURL, Kind: KindNetwork, Err: errors.New("empty url")}
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	result, err := c.fetchOne(ctx, target)
	if err != nil && strings.HasPrefix(target, "https://") {
		var fetchErr *Error
		if errors.As(err, &fetchErr) && fetchErr.Kind == KindNetwork {
			if retried, retryErr := c.fetchOne(ctx, "http://"+strings.TrimPrefix(target, "https://")); retryErr == nil {
				return retried, nil
			}
		}
	}
	return result, err
}

func (c *Client) fetchOne(ctx context.Context, target string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}, &Error{URL: target, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &Error{URL: target, Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return Result{}, &Error{URL: target, Kind: KindHTTPServer, Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return Result{}, &Error{URL: target, Kind: KindHTTPClient, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, &Error{URL: target, Kind: classifyTransport(err), Err: err}
	}

	return Result{
		URL:     target,
		Status:  resp.StatusCode,
		Content: ExtractText(string(body)),
	}, nil
}

func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var timeouter interface{ Timeout() bool }
	if errors.As(err, &timeouter) && timeouter.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
