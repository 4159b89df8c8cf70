package pipeline

import (
	"context"
	"os"
	"testing"

	"coopscout/internal/logging"
	"coopscout/internal/registry"
	"coopscout/internal/sources"
	"coopscout/internal/testsupport"
)

func newTestRunner(t *testing.T, opts ...Option) (*Runner, *registry.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner, err := New(cfg, store, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	t.Cleanup(func() {
		runner.Close()
	})
	return runner, store
}

func seedFeed(t *testing.T, content string) sources.Feed {
	t.Helper()
	return testsupport.WriteFeedFile(t, sources.Feed{
		ID:     "seed",
		Kind:   sources.KindInstituteSeed,
		Format: "csv",
		Fields: sources.FieldMap{Name: "name", Website: "website", Location: "city", Category: "category"},
	}, content)
}

func TestIngestReadsFeeds(t *testing.T) {
	runner, store := newTestRunner(t)

	feed := seedFeed(t, `name,website,city,category
"VALLEY GRAINS COOPERATIVE, INC.",valleygrains.coop,"Fargo, ND",agricultural
Community Food Co-op,communityfood.coop,"Bozeman, MT",food
,missingname.coop,"Helena, MT",
Sunset Housing Cooperative,sunsethousing.coop,"Duluth, MN",
`)

	report, err := runner.Ingest(context.Background(), []sources.Feed{feed})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if report.Feeds != 1 || report.Records != 4 {
		t.Errorf("feeds/records = %d/%d, want 1/4", report.Feeds, report.Records)
	}
	if report.New != 2 {
		t.Errorf("New = %d, want 2", report.New)
	}
	if report.Malformed != 1 {
		t.Errorf("Malformed = %d, want 1", report.Malformed)
	}
	if report.Excluded != 1 {
		t.Errorf("Excluded = %d, want 1", report.Excluded)
	}

	_, _, pending, total := store.Registry().Counts()
	if pending != 2 || total != 2 {
		t.Errorf("pending/total = %d/%d, want 2/2", pending, total)
	}

	// The run must have committed a snapshot.
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}

	entity, state, ok := store.Registry().FindByURL("valleygrains.coop")
	if !ok {
		t.Fatal("ingested entity not findable by URL")
	}
	if state != registry.StatePending {
		t.Errorf("state = %s, want pending", state)
	}
	if entity.Name != "Valley Grains Cooperative, Inc." {
		t.Errorf("display name = %q", entity.Name)
	}
	if entity.Provenance != sources.KindInstituteSeed {
		t.Errorf("provenance = %s", entity.Provenance)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	runner, store := newTestRunner(t)

	feed := seedFeed(t, `name,website,city,category
Valley Grains Cooperative,valleygrains.coop,"Fargo, ND",agricultural
Community Food Co-op,communityfood.coop,"Bozeman, MT",food
`)

	first, err := runner.Ingest(context.Background(), []sources.Feed{feed})
	if err != nil {
		t.Fatalf("first Ingest failed: %v", err)
	}
	if first.New != 2 {
		t.Fatalf("first run New = %d, want 2", first.New)
	}

	second, err := runner.Ingest(context.Background(), []sources.Feed{feed})
	if err != nil {
		t.Fatalf("second Ingest failed: %v", err)
	}
	if second.New != 0 || second.Merged != 0 {
		t.Errorf("second run new/merged = %d/%d, want 0/0", second.New, second.Merged)
	}
	if second.Unchanged != 2 {
		t.Errorf("second run Unchanged = %d, want 2", second.Unchanged)
	}

	_, _, _, total := store.Registry().Counts()
	if total != 2 {
		t.Errorf("total = %d after replay, want 2", total)
	}
}

func TestIngestMergesAcrossFeeds(t *testing.T) {
	runner, store := newTestRunner(t)

	seed := seedFeed(t, `name,website,city,category
Valley Grains Cooperative,valleygrains.coop,"Fargo, ND",agricultural
`)
	directory := testsupport.WriteFeedFile(t, sources.Feed{
		ID:     "directory",
		Kind:   sources.KindAssociationDirectory,
		Format: "csv",
		Fields: sources.FieldMap{Name: "org", Website: "url"},
	}, `org,url
VALLEY GRAINS CO-OP,https://www.valleygrains.coop/
`)

	report, err := runner.Ingest(context.Background(), []sources.Feed{seed, directory})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if report.New != 1 || report.Merged != 1 {
		t.Errorf("new/merged = %d/%d, want 1/1", report.New, report.Merged)
	}
	if len(report.Conflicts) == 0 {
		t.Error("name disagreement between feeds not reported")
	}

	entity, _, ok := store.Registry().FindByURL("valleygrains.coop")
	if !ok {
		t.Fatal("merged entity not findable by URL")
	}
	if entity.Name != "Valley Grains Cooperative" {
		t.Errorf("merge took the lower-priority name: %q", entity.Name)
	}
	if len(entity.Sources) != 2 {
		t.Errorf("sources = %v, want both feeds", entity.Sources)
	}

	_, _, _, total := store.Registry().Counts()
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestIngestFilteredRegistryDump(t *testing.T) {
	runner, store := newTestRunner(t)

	dump := testsupport.WriteFeedFile(t, sources.Feed{
		ID:                "state-dump",
		Kind:              sources.KindRegulatorRegistry,
		Format:            "csv",
		Fields:            sources.FieldMap{Name: "entity_name", CorpType: "corp_type"},
		FilterCooperative: true,
	}, `entity_name,corp_type
Prairie Electric Cooperative,CO-OP NON STOCK
Smith Plumbing LLC,LLC
Lakeview Dairy,DOMESTIC COOPERATIVE
`)

	report, err := runner.Ingest(context.Background(), []sources.Feed{dump})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if report.New != 2 {
		t.Errorf("New = %d, want 2", report.New)
	}
	if report.Excluded != 1 {
		t.Errorf("Excluded = %d, want 1", report.Excluded)
	}

	_, _, pending, _ := store.Registry().Counts()
	if pending != 2 {
		t.Errorf("pending = %d, want 2", pending)
	}
}

func TestIngestAbortsOnUnreadableFeed(t *testing.T) {
	runner, _ := newTestRunner(t)

	missing := sources.Feed{
		ID:     "ghost",
		Kind:   sources.KindInstituteSeed,
		Path:   "/nonexistent/ghost.csv",
		Format: "csv",
		Fields: sources.FieldMap{Name: "name"},
	}
	if _, err := runner.Ingest(context.Background(), []sources.Feed{missing}); err == nil {
		t.Fatal("unreadable feed did not abort the run")
	}
}
