package registry

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"coopscout/internal/sources"
)

// Registry is the in-memory registry of entities and stats. It is not safe
// for concurrent use; the pipeline assumes a single logical writer and the
// Store serializes access behind a file lock.
type Registry struct {
	entities  map[string]*Entity
	states    map[string]State
	byURL     map[string]string
	byNameCat map[string]string
	order     []string
	stats     Stats
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entities:  make(map[string]*Entity),
		states:    make(map[string]State),
		byURL:     make(map[string]string),
		byNameCat: make(map[string]string),
	}
}

func nameCatKey(nameKey string, category Category) string {
	return nameKey + "\x00" + string(category)
}

// Get returns a copy of the entity and its state.
func (r *Registry) Get(id string) (Entity, State, bool) {
	entity, ok := r.entities[id]
	if !ok {
		return Entity{}, "", false
	}
	return entity.Clone(), r.states[id], true
}

// FindByURL looks up an entity by normalized website URL, any state.
func (r *Registry) FindByURL(url string) (Entity, State, bool) {
	if url == "" {
		return Entity{}, "", false
	}
	id, ok := r.byURL[url]
	if !ok {
		return Entity{}, "", false
	}
	return r.Get(id)
}

// FindByNameCategory looks up an entity by normalized name within a category.
func (r *Registry) FindByNameCategory(nameKey string, category Category) (Entity, State, bool) {
	if nameKey == "" {
		return Entity{}, "", false
	}
	id, ok := r.byNameCat[nameCatKey(nameKey, category)]
	if !ok {
		return Entity{}, "", false
	}
	return r.Get(id)
}

// UpsertCandidate inserts a new pending entity or replaces the stored fields
// of an existing one. A missing ID gets a fresh stable identifier. Terminal
// entities accept source and content updates but never change state.
func (r *Registry) UpsertCandidate(entity Entity) (string, error) {
	if entity.Name == "" {
		return "", fmt.Errorf("registry: upsert: entity name required")
	}
	if entity.Category == "" {
		entity.Category = CategoryOther
	}
	if entity.ID == "" {
		entity.ID = uuid.NewString()
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now().UTC()
	}
	sort.Strings(entity.Sources)

	existing, ok := r.entities[entity.ID]
	stored := entity.Clone()
	if ok {
		r.dropIndexes(existing)
	} else {
		r.states[entity.ID] = StatePending
		r.order = append(r.order, entity.ID)
	}
	r.entities[entity.ID] = &stored
	r.addIndexes(&stored)
	return entity.ID, nil
}

func (r *Registry) addIndexes(e *Entity) {
	if e.Website != "" {
		r.byURL[e.Website] = e.ID
	}
	if e.NameKey != "" {
		r.byNameCat[nameCatKey(e.NameKey, e.Category)] = e.ID
	}
}

func (r *Registry) dropIndexes(e *Entity) {
	if e.Website != "" && r.byURL[e.Website] == e.ID {
		delete(r.byURL, e.Website)
	}
	key := nameCatKey(e.NameKey, e.Category)
	if e.NameKey != "" && r.byNameCat[key] == e.ID {
		delete(r.byNameCat, key)
	}
}

// PromoteToVerified moves a pending entity to the verified state and records
// the provenance that justified it.
func (r *Registry) PromoteToVerified(id string, provenance sources.Kind) error {
	entity, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if r.states[id].Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, id, r.states[id])
	}
	now := time.Now().UTC()
	entity.Provenance = provenance
	entity.DecidedAt = &now
	r.states[id] = StateVerified
	r.stats.VerifiedCount++
	return nil
}

// MarkRejected moves a pending entity to the rejected state with a reason
// code.
func (r *Registry) MarkRejected(id, reason string) error {
	entity, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if r.states[id].Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, id, r.states[id])
	}
	now := time.Now().UTC()
	if reason == "" {
		reason = "not_cooperative"
	}
	entity.RejectReason = reason
	entity.DecidedAt = &now
	r.states[id] = StateRejected
	r.stats.RejectedCount++
	return nil
}

// SetScore records the latest similarity score and snippet for an entity.
func (r *Registry) SetScore(id string, score float64, snippet string) error {
	entity, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	entity.Score = &score
	if snippet != "" {
		entity.Snippet = snippet
	}
	return nil
}

// SetContentUnavailable flags an entity whose website fetch failed.
func (r *Registry) SetContentUnavailable(id string) error {
	entity, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	entity.ContentUnavailable = true
	return nil
}

// RecordSession appends a session outcome to the precision history.
func (r *Registry) RecordSession(rec SessionRecord) {
	r.stats.SessionHistory = append(r.stats.SessionHistory, rec)
}

// CurrentPrecision returns cumulative precision across all sessions.
func (r *Registry) CurrentPrecision() float64 {
	return r.stats.Precision()
}

// Stats returns a copy of the accumulated statistics.
func (r *Registry) Stats() Stats {
	cp := r.stats
	cp.SessionHistory = make([]SessionRecord, len(r.stats.SessionHistory))
	copy(cp.SessionHistory, r.stats.SessionHistory)
	return cp
}

// Counts returns entity totals per state. verified + rejected + pending
// always equals total.
func (r *Registry) Counts() (verified, rejected, pending, total int) {
	for _, id := range r.order {
		switch r.states[id] {
		case StateVerified:
			verified++
		case StateRejected:
			rejected++
		default:
			pending++
		}
	}
	return verified, rejected, pending, len(r.order)
}

func (r *Registry) inState(state State) []Entity {
	var out []Entity
	for _, id := range r.order {
		if r.states[id] == state {
			out = append(out, r.entities[id].Clone())
		}
	}
	return out
}

// Pending returns unresolved entities in insertion order.
func (r *Registry) Pending() []Entity { return r.inState(StatePending) }

// Verified returns verified entities in insertion order.
func (r *Registry) Verified() []Entity { return r.inState(StateVerified) }

// Rejected returns rejected entities in insertion order.
func (r *Registry) Rejected() []Entity { return r.inState(StateRejected) }
