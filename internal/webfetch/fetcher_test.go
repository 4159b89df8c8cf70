package webfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchExtractsText(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><head><script>var x=1;</script><style>.a{}</style></head>
			<body><h1>Valley Grains</h1><p>Member-owned since 1952 &amp; growing.</p></body></html>`))
	}))
	defer server.Close()

	client := New(WithUserAgent("test-agent"))
	result, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotAgent != "test-agent" {
		t.Errorf("user agent = %q", gotAgent)
	}
	if !strings.Contains(result.Content, "Valley Grains") {
		t.Errorf("heading lost: %q", result.Content)
	}
	if !strings.Contains(result.Content, "Member-owned since 1952 & growing.") {
		t.Errorf("entity not unescaped: %q", result.Content)
	}
	if strings.Contains(result.Content, "var x=1") {
		t.Errorf("script leaked: %q", result.Content)
	}
}

func TestFetchClassifiesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.Error(w, "gone", http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := New()

	_, err := client.Fetch(context.Background(), server.URL+"/missing")
	var fetchErr *Error
	if !errors.As(err, &fetchErr) || fetchErr.Kind != KindHTTPClient || fetchErr.Status != 404 {
		t.Errorf("4xx error = %v", err)
	}

	_, err = client.Fetch(context.Background(), server.URL+"/boom")
	if !errors.As(err, &fetchErr) || fetchErr.Kind != KindHTTPServer || fetchErr.Status != 500 {
		t.Errorf("5xx error = %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := New(WithTimeout(20 * time.Millisecond))
	_, err := client.Fetch(context.Background(), server.URL)
	var fetchErr *Error
	if !errors.As(err, &fetchErr) || fetchErr.Kind != KindTimeout {
		t.Errorf("timeout error = %v", err)
	}
}

func TestFetchRejectsEmptyURL(t *testing.T) {
	client := New()
	if _, err := client.Fetch(context.Background(), "  "); err == nil {
		t.Fatal("empty url accepted")
	}
}

func TestExtractTextCollapsesWhitespace(t *testing.T) {
	text := ExtractText("<div>  a   b  </div>\n\n\n\n<div>c</div><!-- hidden -->")
	if strings.Contains(text, "hidden") {
		t.Errorf("comment leaked: %q", text)
	}
	if strings.Contains(text, "  ") {
		t.Errorf("whitespace not collapsed: %q", text)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	if got := Truncate("héllo wörld", 5); got != "héllo" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Errorf("zero max should disable truncation: %q", got)
	}
}

type stubFetcher struct {
	fail map[string]bool
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if s.fail[url] {
		return Result{}, &Error{URL: url, Kind: KindHTTPServer, Status: 502}
	}
	return Result{URL: url, Status: 200, Content: "content for " + url}, nil
}

func TestFetchAllPreservesOrder(t *testing.T) {
	fetcher := &stubFetcher{fail: map[string]bool{"b.coop": true}}
	urls := []string{"a.coop", "b.coop", "c.coop", "d.coop"}

	outcomes := FetchAll(context.Background(), fetcher, urls, 2)
	if len(outcomes) != len(urls) {
		t.Fatalf("outcomes = %d", len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.URL != urls[i] {
			t.Errorf("outcome %d url = %q, want %q", i, outcome.URL, urls[i])
		}
	}
	if outcomes[1].Err == nil {
		t.Error("failed fetch not reported")
	}
	if outcomes[0].Err != nil || outcomes[2].Err != nil || outcomes[3].Err != nil {
		t.Error("failure leaked onto siblings")
	}
	if outcomes[2].Result.Content != "content for c.coop" {
		t.Errorf("content = %q", outcomes[2].Result.Content)
	}
}

func TestFetchAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := FetchAll(ctx, &stubFetcher{}, []string{"a.coop", "b.coop"}, 1)
	canceled := 0
	for _, outcome := range outcomes {
		if errors.Is(outcome.Err, context.Canceled) {
			canceled++
		}
	}
	if canceled == 0 {
		t.Error("cancellation not propagated")
	}
}
