package registry

import "fmt"

// Document is the persisted JSON form of the registry. Restore(Snapshot(r))
// reproduces r field for field.
type Document struct {
	Verified []Entity `json:"verified"`
	Rejected []Entity `json:"rejected"`
	Pending  []Entity `json:"pending"`
	Stats    Stats    `json:"stats"`
}

// Snapshot captures the full registry state.
func (r *Registry) Snapshot() Document {
	return Document{
		Verified: r.inState(StateVerified),
		Rejected: r.inState(StateRejected),
		Pending:  r.inState(StatePending),
		Stats:    r.Stats(),
	}
}

// Validate runs the integrity checks applied before a snapshot is accepted:
// unique IDs, unique websites across decided entities, mandatory fields, and
// stats consistent with the collections.
func (d Document) Validate() error {
	seenIDs := make(map[string]struct{})
	seenURLs := make(map[string]string)

	check := func(entities []Entity, state State) error {
		for _, e := range entities {
			if e.ID == "" {
				return fmt.Errorf("%s entity %q has no id", state, e.Name)
			}
			if e.Name == "" {
				return fmt.Errorf("%s entity %s has no name", state, e.ID)
			}
			if e.Category == "" {
				return fmt.Errorf("%s entity %s has no category", state, e.ID)
			}
			if _, dup := seenIDs[e.ID]; dup {
				return fmt.Errorf("duplicate entity id %s", e.ID)
			}
			seenIDs[e.ID] = struct{}{}
			if e.Website != "" && state != StatePending {
				if prior, dup := seenURLs[e.Website]; dup {
					return fmt.Errorf("website %s claimed by both %s and %s", e.Website, prior, e.ID)
				}
				seenURLs[e.Website] = e.ID
			}
		}
		return nil
	}

	if err := check(d.Verified, StateVerified); err != nil {
		return err
	}
	if err := check(d.Rejected, StateRejected); err != nil {
		return err
	}
	if err := check(d.Pending, StatePending); err != nil {
		return err
	}

	if d.Stats.VerifiedCount != len(d.Verified) {
		return fmt.Errorf("stats claim %d verified, snapshot holds %d", d.Stats.VerifiedCount, len(d.Verified))
	}
	if d.Stats.RejectedCount != len(d.Rejected) {
		return fmt.Errorf("stats claim %d rejected, snapshot holds %d", d.Stats.RejectedCount, len(d.Rejected))
	}
	return nil
}

// Restore replaces the registry contents with the snapshot. The document must
// already have passed Validate.
func (r *Registry) Restore(doc Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	fresh := New()
	load := func(entities []Entity, state State) error {
		for i := range entities {
			entity := entities[i].Clone()
			id, err := fresh.UpsertCandidate(entity)
			if err != nil {
				return err
			}
			fresh.states[id] = state
		}
		return nil
	}
	// Load order mirrors snapshot order so insertion order round-trips.
	if err := load(doc.Verified, StateVerified); err != nil {
		return err
	}
	if err := load(doc.Rejected, StateRejected); err != nil {
		return err
	}
	if err := load(doc.Pending, StatePending); err != nil {
		return err
	}
	fresh.stats = doc.Stats

	*r = *fresh
	return nil
}
