package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"coopscout/internal/embeddings"
	"coopscout/internal/logging"
	"coopscout/internal/registry"
	"coopscout/internal/review"
	"coopscout/internal/similarity"
	"coopscout/internal/sources"
	"coopscout/internal/testsupport"
	"coopscout/internal/webfetch"
)

// stubFetcher serves canned content by URL and counts requests.
type stubFetcher struct {
	mu      sync.Mutex
	content map[string]string
	calls   map[string]int
}

func newStubFetcher(content map[string]string) *stubFetcher {
	return &stubFetcher{content: content, calls: make(map[string]int)}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (webfetch.Result, error) {
	f.mu.Lock()
	f.calls[url]++
	f.mu.Unlock()

	body, ok := f.content[url]
	if !ok {
		return webfetch.Result{}, fmt.Errorf("no route to host %s", url)
	}
	return webfetch.Result{URL: url, Status: 200, Content: body}, nil
}

func (f *stubFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func seedVerifiedCoop(t *testing.T, store *registry.Store) string {
	t.Helper()
	entity := testsupport.NewCandidate("Community Food Co-op", "communityfood.coop", "Bozeman, MT",
		registry.CategoryFood, sources.KindInstituteSeed, "seed")
	entity.Snippet = "member owned grocery cooperative selling organic local food"
	return testsupport.SeedVerified(t, store, entity)
}

func TestRankPendingScoresAndPersists(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"riversidefood.coop": "Riverside Food Cooperative is a member owned grocery selling organic local food.",
	})
	runner, store := newTestRunner(t,
		WithFetcher(fetcher),
		WithEmbedder(embeddings.NewLocal(128)),
	)

	seedVerifiedCoop(t, store)
	goodID := testsupport.SeedCandidate(t, store, testsupport.NewCandidate(
		"Riverside Food Cooperative", "riversidefood.coop", "Missoula, MT",
		registry.CategoryFood, sources.KindFederalDatabase, "fed"))
	deadID := testsupport.SeedCandidate(t, store, testsupport.NewCandidate(
		"Ghost Town Cooperative", "ghosttown.coop", "Butte, MT",
		registry.CategoryOther, sources.KindFederalDatabase, "fed"))

	report, err := runner.RankPending(context.Background(), nil)
	if err != nil {
		t.Fatalf("RankPending failed: %v", err)
	}

	if report.Pending != 2 {
		t.Errorf("Pending = %d, want 2", report.Pending)
	}
	if report.Fetched != 1 || report.FetchFailed != 1 {
		t.Errorf("fetched/failed = %d/%d, want 1/1", report.Fetched, report.FetchFailed)
	}
	// Both candidates embed from name alone when content is missing.
	if report.Scored != 2 {
		t.Errorf("Scored = %d, want 2", report.Scored)
	}
	if len(report.Queue) != 2 {
		t.Fatalf("queue = %d items", len(report.Queue))
	}
	if report.Queue[0].Entity.ID != goodID {
		t.Errorf("top of queue = %s, want the matching grocery co-op", report.Queue[0].Entity.ID)
	}

	good, _, _ := store.Registry().Get(goodID)
	if good.Score == nil {
		t.Error("score not persisted")
	}
	if good.Snippet == "" {
		t.Error("fetched content not persisted")
	}

	dead, _, _ := store.Registry().Get(deadID)
	if !dead.ContentUnavailable {
		t.Error("fetch failure not flagged on the entity")
	}
	if dead.Score == nil {
		t.Error("unreachable candidate should still be scored by name")
	}
}

func TestRankPendingSkipsSettledContent(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"riversidefood.coop": "Riverside Food Cooperative grocery.",
	})
	runner, store := newTestRunner(t,
		WithFetcher(fetcher),
		WithEmbedder(embeddings.NewLocal(128)),
	)

	seedVerifiedCoop(t, store)
	testsupport.SeedCandidate(t, store, testsupport.NewCandidate(
		"Riverside Food Cooperative", "riversidefood.coop", "",
		registry.CategoryFood, sources.KindFederalDatabase, "fed"))
	testsupport.SeedCandidate(t, store, testsupport.NewCandidate(
		"Ghost Town Cooperative", "ghosttown.coop", "",
		registry.CategoryOther, sources.KindFederalDatabase, "fed"))

	if _, err := runner.RankPending(context.Background(), nil); err != nil {
		t.Fatalf("first RankPending failed: %v", err)
	}
	firstCalls := fetcher.totalCalls()
	if firstCalls != 2 {
		t.Fatalf("first run fetched %d urls, want 2", firstCalls)
	}

	// Snippets and unavailability flags persist, so nothing is re-fetched.
	report, err := runner.RankPending(context.Background(), nil)
	if err != nil {
		t.Fatalf("second RankPending failed: %v", err)
	}
	if fetcher.totalCalls() != firstCalls {
		t.Errorf("second run re-fetched settled candidates: %d calls", fetcher.totalCalls()-firstCalls)
	}
	if report.Fetched != 0 || report.FetchFailed != 0 {
		t.Errorf("second run fetched/failed = %d/%d, want 0/0", report.Fetched, report.FetchFailed)
	}
}

func TestRankPendingRequiresVerifiedEntities(t *testing.T) {
	runner, store := newTestRunner(t,
		WithFetcher(newStubFetcher(nil)),
		WithEmbedder(embeddings.NewLocal(128)),
	)

	testsupport.SeedCandidate(t, store, testsupport.NewCandidate(
		"Riverside Food Cooperative", "", "",
		registry.CategoryFood, sources.KindFederalDatabase, "fed"))

	if _, err := runner.RankPending(context.Background(), nil); !errors.Is(err, similarity.ErrNoVerified) {
		t.Errorf("error = %v, want ErrNoVerified", err)
	}
}

func TestRankPendingEmptyQueue(t *testing.T) {
	runner, _ := newTestRunner(t,
		WithFetcher(newStubFetcher(nil)),
		WithEmbedder(embeddings.NewLocal(128)),
	)

	report, err := runner.RankPending(context.Background(), nil)
	if err != nil {
		t.Fatalf("RankPending failed: %v", err)
	}
	if report.Pending != 0 || len(report.Queue) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestRankPendingReportsProgress(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"riversidefood.coop": "Riverside Food Cooperative grocery.",
	})
	runner, store := newTestRunner(t,
		WithFetcher(fetcher),
		WithEmbedder(embeddings.NewLocal(128)),
	)

	seedVerifiedCoop(t, store)
	testsupport.SeedCandidate(t, store, testsupport.NewCandidate(
		"Riverside Food Cooperative", "riversidefood.coop", "",
		registry.CategoryFood, sources.KindFederalDatabase, "fed"))

	stages := make(map[string]int)
	progress := func(stage string, done, total int) {
		stages[stage]++
	}
	if _, err := runner.RankPending(context.Background(), progress); err != nil {
		t.Fatalf("RankPending failed: %v", err)
	}
	if stages["fetch"] == 0 {
		t.Error("fetch progress never reported")
	}
	if stages["embed"] == 0 {
		t.Error("embed progress never reported")
	}
}

func TestRankResumesAfterInterruptedReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fetcher := newStubFetcher(nil)
	opts := []Option{
		WithFetcher(fetcher),
		WithEmbedder(embeddings.NewLocal(128)),
	}

	store := testsupport.MustOpenStore(t, cfg)
	runner, err := New(cfg, store, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	seedVerifiedCoop(t, store)
	for _, name := range []string{
		"Riverside Food Cooperative",
		"Prairie Grain Cooperative",
		"Hillside Credit Union",
		"Ghost Town Cooperative",
	} {
		testsupport.SeedCandidate(t, store, testsupport.NewCandidate(
			name, "", "", registry.CategoryOther, sources.KindFederalDatabase, "fed"))
	}

	first, err := runner.RankPending(context.Background(), nil)
	if err != nil {
		t.Fatalf("first RankPending failed: %v", err)
	}
	if len(first.Queue) != 4 {
		t.Fatalf("first queue = %d items, want 4", len(first.Queue))
	}

	// Decide the top two candidates and quit, as a reviewer closing the
	// terminal mid-session would.
	session := review.NewSession(store,
		review.NewScriptedSource(review.DecisionReject, review.DecisionReject, review.DecisionQuit),
		io.Discard, logging.NewNop(), review.Options{})
	summary, err := session.Run(context.Background(), first.Queue)
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if summary.Rejected != 2 {
		t.Fatalf("Rejected = %d, want 2", summary.Rejected)
	}

	runner.Close()
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// A fresh process picks up where the last one left off: the queue holds
	// only the undecided candidates, in the same order as before.
	reopened, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		t.Fatalf("reopen registry: %v", err)
	}
	defer reopened.Close()

	resumed, err := New(cfg, reopened, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("pipeline.New after reopen: %v", err)
	}
	defer resumed.Close()

	second, err := resumed.RankPending(context.Background(), nil)
	if err != nil {
		t.Fatalf("second RankPending failed: %v", err)
	}
	if len(second.Queue) != 2 {
		t.Fatalf("resumed queue = %d items, want 2", len(second.Queue))
	}
	for i, item := range second.Queue {
		want := first.Queue[i+2].Entity.ID
		if item.Entity.ID != want {
			t.Errorf("resumed queue[%d] = %s, want %s", i, item.Entity.ID, want)
		}
	}
}
