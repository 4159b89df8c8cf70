package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity ID is unknown to the registry.
var ErrNotFound = errors.New("registry: entity not found")

// ErrInvalidTransition is returned when a terminal entity is asked to change
// state again. Verified and rejected are monotonic.
var ErrInvalidTransition = errors.New("registry: entity already decided")

// ErrLocked is returned when another process holds the registry lock.
var ErrLocked = errors.New("registry: store is locked by another process")

// CorruptionError marks a snapshot that failed its integrity check on load.
// It is fatal: the store refuses to proceed rather than silently initializing
// an empty registry over good data.
type CorruptionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry: snapshot %s corrupt: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("registry: snapshot %s corrupt: %s", e.Path, e.Reason)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

// IsCorruption reports whether err wraps a CorruptionError.
func IsCorruption(err error) bool {
	var corrupt *CorruptionError
	return errors.As(err, &corrupt)
}
