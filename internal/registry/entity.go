package registry

import (
	"sort"
	"strings"
	"time"

	"coopscout/internal/sources"
)

// State represents the lifecycle of a registry entity.
type State string

const (
	StatePending  State = "pending"
	StateVerified State = "verified"
	StateRejected State = "rejected"
)

var allStates = []State{StatePending, StateVerified, StateRejected}

// AllStates returns the known lifecycle states.
func AllStates() []State {
	cp := make([]State, len(allStates))
	copy(cp, allStates)
	return cp
}

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToLower(strings.TrimSpace(value)))
	for _, state := range allStates {
		if normalized == state {
			return state, true
		}
	}
	return "", false
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateRejected
}

// Category classifies what kind of organization an entity is. It is always
// assigned; entities no rule matches fall back to CategoryOther.
type Category string

const (
	CategoryAgricultural Category = "agricultural"
	CategoryElectric     Category = "electric"
	CategoryMutual       Category = "mutual"
	CategoryTelecom      Category = "telecom"
	CategoryCredit       Category = "credit"
	CategoryEnergy       Category = "energy"
	CategoryFood         Category = "food"
	CategoryPurchasing   Category = "purchasing"
	CategoryOther        Category = "other"
)

var allCategories = []Category{
	CategoryAgricultural,
	CategoryElectric,
	CategoryMutual,
	CategoryTelecom,
	CategoryCredit,
	CategoryEnergy,
	CategoryFood,
	CategoryPurchasing,
	CategoryOther,
}

// AllCategories returns the known categories.
func AllCategories() []Category {
	cp := make([]Category, len(allCategories))
	copy(cp, allCategories)
	return cp
}

// ParseCategory converts a string into a known Category.
func ParseCategory(value string) (Category, bool) {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, category := range allCategories {
		if normalized == category {
			return category, true
		}
	}
	return "", false
}

// Entity is one organization tracked by the registry. The same struct backs
// candidates, verified cooperatives, and rejected candidates; the registry
// tracks which state each entity is in.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// NameKey is the normalized form of Name used as the fallback dedup key.
	// It is computed by the normalizer and persisted so restores never have
	// to re-derive it.
	NameKey string `json:"nameKey"`
	// Website is the normalized URL (host lowercased, scheme/www/query
	// stripped). Empty when no source supplied one.
	Website  string   `json:"website,omitempty"`
	Location string   `json:"location,omitempty"`
	Category Category `json:"category"`
	// Sources lists the IDs of every feed that contributed this entity,
	// sorted and deduplicated. Sources are unioned on merge, never dropped.
	Sources []string `json:"sources"`
	// Provenance is the most authoritative feed kind among Sources; it
	// decides whose fields are canonical when sources disagree.
	Provenance sources.Kind `json:"provenance"`
	// Score is the latest similarity score, when the entity has been ranked.
	Score *float64 `json:"score,omitempty"`
	// Snippet is the extracted website text used for similarity scoring.
	Snippet string `json:"snippet,omitempty"`
	// ContentUnavailable marks entities whose website could not be fetched;
	// they stay eligible for review by name alone.
	ContentUnavailable bool       `json:"contentUnavailable,omitempty"`
	RejectReason       string     `json:"reason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	DecidedAt          *time.Time `json:"decidedAt,omitempty"`
}

// HasSource reports whether the feed already contributed to this entity.
func (e *Entity) HasSource(feedID string) bool {
	for _, id := range e.Sources {
		if id == feedID {
			return true
		}
	}
	return false
}

// AddSource unions a feed ID into the entity's source set.
func (e *Entity) AddSource(feedID string) {
	if feedID == "" || e.HasSource(feedID) {
		return
	}
	e.Sources = append(e.Sources, feedID)
	sort.Strings(e.Sources)
}

// Clone returns a deep copy so callers can hold entities without aliasing
// registry state.
func (e *Entity) Clone() Entity {
	cp := *e
	cp.Sources = make([]string, len(e.Sources))
	copy(cp.Sources, e.Sources)
	if e.Score != nil {
		score := *e.Score
		cp.Score = &score
	}
	if e.DecidedAt != nil {
		decided := *e.DecidedAt
		cp.DecidedAt = &decided
	}
	return cp
}
