package webfetch

import (
	"context"
	"sync"
)

// Outcome pairs one fan-out URL with its result or error, by input index.
type Outcome struct {
	URL    string
	Result Result
	Err    error
}

// FetchAll retrieves every URL with at most workers concurrent requests.
// Outcomes are returned in input order; a slow or failed fetch never blocks
// or aborts its siblings. Context cancellation stops new requests from
// starting, yet already-started ones run to their own timeout.
func FetchAll(ctx context.Context, fetcher Fetcher, urls []string, workers int) []Outcome {
	if workers <= 0 {
		workers = 4
	}
	if workers > len(urls) {
		workers = len(urls)
	}

	outcomes := make([]Outcome, len(urls))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result, err := fetcher.Fetch(ctx, urls[idx])
				outcomes[idx] = Outcome{URL: urls[idx], Result: result, Err: err}
			}
		}()
	}

feed:
	for idx := range urls {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			outcomes[idx] = Outcome{URL: urls[idx], Err: ctx.Err()}
			for rest := idx + 1; rest < len(urls); rest++ {
				outcomes[rest] = Outcome{URL: urls[rest], Err: ctx.Err()}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
