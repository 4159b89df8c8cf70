package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"coopscout/internal/sources"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	id, err := store.Registry().UpsertCandidate(candidate("Valley Grains", "valley grains", "valleygrains.coop", CategoryAgricultural))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.PromoteToVerified(id, sources.KindInstituteSeed); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	entity, state, ok := reopened.Registry().Get(id)
	if !ok {
		t.Fatal("entity lost across reopen")
	}
	if state != StateVerified {
		t.Errorf("state = %s", state)
	}
	if entity.Website != "valleygrains.coop" {
		t.Errorf("website = %q", entity.Website)
	}
}

func TestStoreFreshWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	_, _, _, total := store.Registry().Counts()
	if total != 0 {
		t.Errorf("fresh registry has %d entities", total)
	}
}

func TestStoreSecondOpenerLockedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, err := Open(path); !errors.Is(err, ErrLocked) {
		t.Errorf("second open: %v, want ErrLocked", err)
	}
}

func TestStoreLockReleasedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("open after close: %v", err)
	}
	second.Close()
}

func TestStoreRefusesCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Open(path)
	if !IsCorruption(err) {
		t.Errorf("malformed json: %v, want CorruptionError", err)
	}

	// Valid JSON that fails the integrity check is just as fatal.
	damaged := `{"verified":[{"id":"1","name":"A","category":"other"}],"rejected":[],"pending":[],"stats":{"verifiedCount":5,"rejectedCount":0}}`
	if err := os.WriteFile(path, []byte(damaged), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = Open(path)
	if !IsCorruption(err) {
		t.Errorf("inconsistent stats: %v, want CorruptionError", err)
	}
}

func TestStoreSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, err := store.Registry().UpsertCandidate(candidate("A", "a", "", CategoryOther)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp snapshot left behind")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot missing: %v", err)
	}
}
