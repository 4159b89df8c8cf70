package normalize

import (
	"errors"
	"fmt"
	"strings"

	"coopscout/internal/registry"
	"coopscout/internal/sources"
)

// ErrMalformedRecord signals a record missing its mandatory name field. The
// caller skips the record, counts it, and continues the batch.
var ErrMalformedRecord = errors.New("normalize: record has no name")

// ErrExcludedRecord signals a record dropped by the exclusion or cooperative
// filters. Not an error condition, just a counted skip.
var ErrExcludedRecord = errors.New("normalize: record excluded")

// Normalizer projects source records into registry candidates.
type Normalizer struct {
	rules []Rule
}

// New returns a normalizer with the default classification rules.
func New() *Normalizer {
	return &Normalizer{rules: DefaultRules()}
}

// NewWithRules returns a normalizer using a custom rule table.
func NewWithRules(rules []Rule) *Normalizer {
	return &Normalizer{rules: rules}
}

// Normalize converts one record into a candidate entity. It returns
// ErrMalformedRecord when the name is missing and ErrExcludedRecord when the
// record is filtered out; both are per-record skips, never batch failures.
func (n *Normalizer) Normalize(rec sources.Record) (registry.Entity, error) {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return registry.Entity{}, fmt.Errorf("%w (feed %s)", ErrMalformedRecord, rec.Feed)
	}

	nameLower := strings.ToLower(name)
	corpType := strings.ToUpper(strings.TrimSpace(rec.CorpType))
	if Excluded(nameLower, corpType) {
		return registry.Entity{}, fmt.Errorf("%w: %q (feed %s)", ErrExcludedRecord, name, rec.Feed)
	}
	if rec.Filter && !looksCooperative(nameLower, corpType) {
		return registry.Entity{}, fmt.Errorf("%w: %q not cooperative-like (feed %s)", ErrExcludedRecord, name, rec.Feed)
	}

	category := n.classify(rec, nameLower, corpType)

	return registry.Entity{
		Name:       DisplayName(name),
		NameKey:    Name(name),
		Website:    URL(rec.Website),
		Location:   strings.TrimSpace(rec.Location),
		Category:   category,
		Sources:    []string{rec.Feed},
		Provenance: rec.Kind,
	}, nil
}

func (n *Normalizer) classify(rec sources.Record, nameLower, corpType string) registry.Category {
	if hint, ok := registry.ParseCategory(rec.CategoryHint); ok {
		return hint
	}
	return Classify(n.rules, nameLower, corpType)
}

func looksCooperative(nameLower, corpType string) bool {
	if _, ok := cooperativeCorpTypes[corpType]; ok {
		return true
	}
	for _, keyword := range cooperativeKeywords {
		if strings.Contains(nameLower, keyword) {
			return true
		}
	}
	return false
}
