package testsupport

import (
	"testing"

	"coopscout/internal/config"
	"coopscout/internal/normalize"
	"coopscout/internal/registry"
	"coopscout/internal/sources"
)

// MustOpenStore opens a registry store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *registry.Store {
	t.Helper()

	store, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewCandidate builds a pending entity the way the normalizer would, without
// going through a feed file.
func NewCandidate(name, website, location string, category registry.Category, kind sources.Kind, feedID string) registry.Entity {
	return registry.Entity{
		Name:       normalize.DisplayName(name),
		NameKey:    normalize.Name(name),
		Website:    normalize.URL(website),
		Location:   location,
		Category:   category,
		Sources:    []string{feedID},
		Provenance: kind,
	}
}

// SeedCandidate inserts a pending entity and returns its ID.
func SeedCandidate(t testing.TB, store *registry.Store, entity registry.Entity) string {
	t.Helper()

	id, err := store.Registry().UpsertCandidate(entity)
	if err != nil {
		t.Fatalf("upsert candidate: %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("save registry: %v", err)
	}
	return id
}

// SeedVerified inserts an entity and promotes it to verified.
func SeedVerified(t testing.TB, store *registry.Store, entity registry.Entity) string {
	t.Helper()

	id := SeedCandidate(t, store, entity)
	if err := store.PromoteToVerified(id, entity.Provenance); err != nil {
		t.Fatalf("promote %s: %v", id, err)
	}
	return id
}
