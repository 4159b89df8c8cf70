// Package dedupe merges candidates that denote the same real-world
// organization. Matching runs normalized-URL first, then normalized-name
// within the same category; source priority decides which record's fields
// become canonical. Resolution is idempotent: feeding the same candidates
// against an already-populated registry changes nothing.
package dedupe

import (
	"fmt"
	"log/slog"

	"coopscout/internal/registry"
)

// Outcome describes what Resolve did with a candidate.
type Outcome string

const (
	// OutcomeNew means the candidate had no match and was inserted pending.
	OutcomeNew Outcome = "new"
	// OutcomeMergedPending means the candidate merged into an unresolved
	// entity (from the registry or earlier in the same batch).
	OutcomeMergedPending Outcome = "merged-pending"
	// OutcomeMergedTerminal means the candidate matched an already decided
	// entity; only its source set was extended.
	OutcomeMergedTerminal Outcome = "merged-terminal"
	// OutcomeUnchanged means the candidate added nothing new.
	OutcomeUnchanged Outcome = "unchanged"
)

// Conflict records a field disagreement between two sources for the same
// merged entity. Conflicts are resolved by priority and reported, never
// fatal.
type Conflict struct {
	EntityID  string
	Candidate string
	Field     string
	Kept      string
	Dropped   string
}

func (c Conflict) String() string {
	return fmt.Sprintf("entity %s: %s %q kept over %q (candidate %q)", c.EntityID, c.Field, c.Kept, c.Dropped, c.Candidate)
}

// Result is the resolution of one candidate.
type Result struct {
	ID        string
	Outcome   Outcome
	Conflicts []Conflict
}

// Deduplicator resolves candidates against a registry.
type Deduplicator struct {
	reg    *registry.Registry
	logger *slog.Logger
}

// New returns a deduplicator over the given registry.
func New(reg *registry.Registry, logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{reg: reg, logger: logger}
}

// Resolve matches the candidate against the registry and either merges it or
// inserts it as a new pending entity. Candidates committed earlier in the
// same batch are already in the registry, so batch-internal duplicates merge
// through the same indexes.
func (d *Deduplicator) Resolve(candidate registry.Entity) (Result, error) {
	match, state, ok := d.match(candidate)
	if !ok {
		id, err := d.reg.UpsertCandidate(candidate)
		if err != nil {
			return Result{}, err
		}
		return Result{ID: id, Outcome: OutcomeNew}, nil
	}

	merged, conflicts, changed := merge(match, candidate)
	for _, conflict := range conflicts {
		d.logger.Warn("duplicate conflict",
			slog.String("entity", conflict.EntityID),
			slog.String("field", conflict.Field),
			slog.String("kept", conflict.Kept),
			slog.String("dropped", conflict.Dropped),
		)
	}
	if !changed {
		return Result{ID: match.ID, Outcome: OutcomeUnchanged, Conflicts: conflicts}, nil
	}

	if state.Terminal() {
		// Decided entities only gain provenance: extra sources, a website
		// they lacked. Name, category, and state stay fixed.
		safe := match.Clone()
		for _, src := range candidate.Sources {
			safe.AddSource(src)
		}
		if safe.Website == "" && merged.Website != "" {
			safe.Website = merged.Website
		}
		if _, err := d.reg.UpsertCandidate(safe); err != nil {
			return Result{}, err
		}
		return Result{ID: match.ID, Outcome: OutcomeMergedTerminal, Conflicts: conflicts}, nil
	}

	if _, err := d.reg.UpsertCandidate(merged); err != nil {
		return Result{}, err
	}
	return Result{ID: match.ID, Outcome: OutcomeMergedPending, Conflicts: conflicts}, nil
}

// match applies the matching rules in order. When the URL rule and the
// name+category fallback point at different entities, the more authoritative
// provenance wins; on a tie the URL match stands and the ambiguity is
// reported by merge as a conflict.
func (d *Deduplicator) match(candidate registry.Entity) (registry.Entity, registry.State, bool) {
	byURL, urlState, urlOK := d.reg.FindByURL(candidate.Website)
	byName, nameState, nameOK := d.reg.FindByNameCategory(candidate.NameKey, candidate.Category)

	switch {
	case urlOK && nameOK && byURL.ID != byName.ID:
		if byName.Provenance.Outranks(byURL.Provenance) {
			return byName, nameState, true
		}
		return byURL, urlState, true
	case urlOK:
		return byURL, urlState, true
	case nameOK:
		return byName, nameState, true
	default:
		return registry.Entity{}, "", false
	}
}

// merge folds the candidate into the existing entity. The more authoritative
// provenance keeps its name spelling and category; contributing sources are
// always unioned.
func merge(existing, candidate registry.Entity) (registry.Entity, []Conflict, bool) {
	merged := existing.Clone()
	var conflicts []Conflict
	changed := false

	for _, src := range candidate.Sources {
		if !merged.HasSource(src) {
			merged.AddSource(src)
			changed = true
		}
	}

	candidateWins := candidate.Provenance.Outranks(existing.Provenance)
	if candidateWins {
		merged.Provenance = candidate.Provenance
		changed = true
	}

	if candidate.Name != existing.Name && candidate.NameKey != "" {
		kept, dropped := existing.Name, candidate.Name
		if candidateWins {
			merged.Name = candidate.Name
			merged.NameKey = candidate.NameKey
			kept, dropped = candidate.Name, existing.Name
			changed = true
		}
		if candidate.NameKey != existing.NameKey {
			conflicts = append(conflicts, Conflict{
				EntityID:  existing.ID,
				Candidate: candidate.Name,
				Field:     "name",
				Kept:      kept,
				Dropped:   dropped,
			})
		}
	}

	if candidate.Category != existing.Category {
		kept, dropped := string(existing.Category), string(candidate.Category)
		if candidateWins {
			merged.Category = candidate.Category
			kept, dropped = dropped, kept
			changed = true
		}
		conflicts = append(conflicts, Conflict{
			EntityID:  existing.ID,
			Candidate: candidate.Name,
			Field:     "category",
			Kept:      kept,
			Dropped:   dropped,
		})
	}

	if merged.Website == "" && candidate.Website != "" {
		merged.Website = candidate.Website
		changed = true
	}
	if merged.Location == "" && candidate.Location != "" {
		merged.Location = candidate.Location
		changed = true
	}

	return merged, conflicts, changed
}
