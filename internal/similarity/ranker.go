package similarity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"coopscout/internal/embeddings"
	"coopscout/internal/logging"
	"coopscout/internal/registry"
)

// DefaultThreshold is the score below which candidates are deprioritized.
// They stay unresolved either way; the threshold only shapes presentation.
const DefaultThreshold = 0.5

// nearestMatches is how many closest verified entities each ranked candidate
// carries for the review display.
const nearestMatches = 3

// Match names one verified entity close to a candidate.
type Match struct {
	ID       string
	Name     string
	Category registry.Category
	Score    float64
}

// Ranked is one candidate with its similarity outcome.
type Ranked struct {
	Entity registry.Entity
	// Score is the cosine similarity against the reference vector. Only
	// meaningful when Scored is true.
	Score float64
	// Scored is false when the candidate's embedding failed; such candidates
	// rank last but remain in the queue.
	Scored bool
	// Deprioritized marks scored candidates below the ranker threshold. They
	// stay in the queue; listings and review cards flag them.
	Deprioritized bool
	Nearest       []Match
}

// ErrNoVerified is returned when ranking is attempted before any entity has
// been verified: without a verified set there is no reference vector.
var ErrNoVerified = errors.New("similarity: no verified entities to build reference vector")

// Ranker scores and orders unresolved candidates.
type Ranker struct {
	embedder  embeddings.Embedder
	threshold float64
	workers   int
	logger    *slog.Logger
}

// RankerOption configures optional Ranker behavior.
type RankerOption func(*Ranker)

// WithThreshold overrides the deprioritization threshold.
func WithThreshold(threshold float64) RankerOption {
	return func(r *Ranker) { r.threshold = threshold }
}

// WithWorkers bounds embedding concurrency.
func WithWorkers(workers int) RankerOption {
	return func(r *Ranker) {
		if workers > 0 {
			r.workers = workers
		}
	}
}

// NewRanker constructs a ranker over the given embedder.
func NewRanker(embedder embeddings.Embedder, logger *slog.Logger, opts ...RankerOption) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	ranker := &Ranker{
		embedder:  embedder,
		threshold: DefaultThreshold,
		workers:   4,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(ranker)
	}
	return ranker
}

// EmbedText builds the embedding input for an entity: name, location, and
// whatever content the fetcher extracted.
func EmbedText(e registry.Entity) string {
	parts := []string{e.Name}
	if e.Location != "" {
		parts = append(parts, "Location: "+e.Location)
	}
	if e.Snippet != "" {
		parts = append(parts, e.Snippet)
	}
	return strings.Join(parts, "\n\n")
}

// Rank scores every pending candidate against the verified set and returns
// them in the deterministic ranking order. The reference vector is the mean
// of the verified embeddings, recomputed on every call so it always tracks
// the current verified set.
func (r *Ranker) Rank(ctx context.Context, pending, verified []registry.Entity, progress func(done, total int)) ([]Ranked, error) {
	if len(verified) == 0 {
		return nil, ErrNoVerified
	}

	verifiedVectors, verifiedErrs := r.embedAll(ctx, verified, nil)
	usable := make([][]float32, 0, len(verifiedVectors))
	for i, vector := range verifiedVectors {
		if verifiedErrs[i] != nil {
			r.logger.Warn("reference embedding failed",
				slog.String("entity", verified[i].ID),
				logging.Error(verifiedErrs[i]),
			)
			continue
		}
		usable = append(usable, vector)
	}
	if len(usable) == 0 {
		return nil, ErrNoVerified
	}
	reference := mean(usable)

	candidateVectors, candidateErrs := r.embedAll(ctx, pending, progress)

	ranked := make([]Ranked, len(pending))
	for i, entity := range pending {
		ranked[i] = Ranked{Entity: entity}
		if candidateErrs[i] != nil {
			r.logger.Warn("candidate embedding failed",
				slog.String("entity", entity.ID),
				slog.String("name", entity.Name),
				logging.Error(candidateErrs[i]),
			)
			continue
		}
		ranked[i].Score = Cosine(reference, candidateVectors[i])
		ranked[i].Scored = true
		ranked[i].Deprioritized = ranked[i].Score < r.threshold
		ranked[i].Nearest = nearest(candidateVectors[i], verified, verifiedVectors, verifiedErrs)
	}

	sortRanked(ranked)
	return ranked, nil
}

// sortRanked orders candidates: scored before unscored, score descending,
// then source priority, then normalized name. The order is total, so two
// runs over unchanged inputs agree item for item.
func sortRanked(ranked []Ranked) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Scored != b.Scored {
			return a.Scored
		}
		if a.Scored && a.Score != b.Score {
			return a.Score > b.Score
		}
		if ra, rb := a.Entity.Provenance.Rank(), b.Entity.Provenance.Rank(); ra != rb {
			return ra < rb
		}
		if a.Entity.NameKey != b.Entity.NameKey {
			return a.Entity.NameKey < b.Entity.NameKey
		}
		return a.Entity.ID < b.Entity.ID
	})
}

// nearest returns the top verified matches for the candidate vector.
func nearest(candidate []float32, verified []registry.Entity, vectors [][]float32, errs []error) []Match {
	matches := make([]Match, 0, len(verified))
	for i, entity := range verified {
		if errs[i] != nil {
			continue
		}
		matches = append(matches, Match{
			ID:       entity.ID,
			Name:     entity.Name,
			Category: entity.Category,
			Score:    Cosine(candidate, vectors[i]),
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > nearestMatches {
		matches = matches[:nearestMatches]
	}
	return matches
}

// embedAll embeds every entity's content with bounded concurrency. Results
// and errors line up with the input by index, so identity survives the
// fan-out regardless of completion order.
func (r *Ranker) embedAll(ctx context.Context, entities []registry.Entity, progress func(done, total int)) ([][]float32, []error) {
	vectors := make([][]float32, len(entities))
	errs := make([]error, len(entities))
	if len(entities) == 0 {
		return vectors, errs
	}

	workers := r.workers
	if workers > len(entities) {
		workers = len(entities)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				vector, err := r.embedder.Embed(ctx, EmbedText(entities[idx]))
				vectors[idx], errs[idx] = vector, err
				if progress != nil {
					mu.Lock()
					done++
					progress(done, len(entities))
					mu.Unlock()
				}
			}
		}()
	}

	for idx := range entities {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			errs[idx] = fmt.Errorf("embed %s: %w", entities[idx].ID, ctx.Err())
			for rest := idx + 1; rest < len(entities); rest++ {
				errs[rest] = fmt.Errorf("embed %s: %w", entities[rest].ID, ctx.Err())
			}
			close(jobs)
			wg.Wait()
			return vectors, errs
		}
	}
	close(jobs)
	wg.Wait()

	return vectors, errs
}
