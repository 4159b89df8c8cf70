package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"coopscout/internal/sources"
)

// Store binds a Registry to its snapshot file. All mutating operations commit
// a complete new snapshot atomically: the document is staged to a temp file
// and renamed over the previous one only once fully written.
type Store struct {
	path string
	lock *flock.Flock
	reg  *Registry
}

// Open loads the registry snapshot at path, creating an empty registry when
// no snapshot exists yet. It acquires an exclusive file lock; a second opener
// gets ErrLocked.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire registry lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}

	reg := New()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Fresh registry; first commit creates the snapshot.
	case err != nil:
		_ = lock.Unlock()
		return nil, fmt.Errorf("read snapshot: %w", err)
	default:
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			_ = lock.Unlock()
			return nil, &CorruptionError{Path: path, Reason: "malformed json", Err: err}
		}
		if err := doc.Validate(); err != nil {
			_ = lock.Unlock()
			return nil, &CorruptionError{Path: path, Reason: "integrity check failed", Err: err}
		}
		if err := reg.Restore(doc); err != nil {
			_ = lock.Unlock()
			return nil, &CorruptionError{Path: path, Reason: "restore failed", Err: err}
		}
	}

	return &Store{path: path, lock: lock, reg: reg}, nil
}

// Close releases the registry lock without writing.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Registry exposes the in-memory registry for reads and batched mutation.
// Callers that mutate it directly must follow up with Save.
func (s *Store) Registry() *Registry { return s.reg }

// Path returns the snapshot location.
func (s *Store) Path() string { return s.path }

// Save commits the current registry state as a new snapshot.
func (s *Store) Save() error {
	doc := s.reg.Snapshot()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// PromoteToVerified applies the transition and commits immediately, so a
// crash mid-session loses at most the in-flight decision.
func (s *Store) PromoteToVerified(id string, provenance sources.Kind) error {
	if err := s.reg.PromoteToVerified(id, provenance); err != nil {
		return err
	}
	return s.Save()
}

// MarkRejected applies the transition and commits immediately.
func (s *Store) MarkRejected(id, reason string) error {
	if err := s.reg.MarkRejected(id, reason); err != nil {
		return err
	}
	return s.Save()
}

// RecordSession appends a session record and commits.
func (s *Store) RecordSession(rec SessionRecord) error {
	s.reg.RecordSession(rec)
	return s.Save()
}
