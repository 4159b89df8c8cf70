package sources

import "strings"

// Kind classifies how authoritative a feed is. Lower priority rank wins merge
// conflicts.
type Kind string

const (
	KindInstituteSeed        Kind = "institute-seed"
	KindRegulatorRegistry    Kind = "regulator-registry"
	KindFederalDatabase      Kind = "federal-database"
	KindAssociationDirectory Kind = "association-directory"
	KindSimilarityDiscovered Kind = "similarity-discovered"
)

var kindOrder = []Kind{
	KindInstituteSeed,
	KindRegulatorRegistry,
	KindFederalDatabase,
	KindAssociationDirectory,
	KindSimilarityDiscovered,
}

var kindRank = func() map[Kind]int {
	ranks := make(map[Kind]int, len(kindOrder))
	for i, kind := range kindOrder {
		ranks[kind] = i
	}
	return ranks
}()

// AllKinds returns the known feed kinds in priority order.
func AllKinds() []Kind {
	cp := make([]Kind, len(kindOrder))
	copy(cp, kindOrder)
	return cp
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	_, ok := kindRank[normalized]
	if !ok {
		return "", false
	}
	return normalized, true
}

// Rank returns the priority rank of the kind; unknown kinds sort after all
// known ones.
func (k Kind) Rank() int {
	if rank, ok := kindRank[k]; ok {
		return rank
	}
	return len(kindOrder)
}

// Outranks reports whether k takes precedence over other during merges.
func (k Kind) Outranks(other Kind) bool {
	return k.Rank() < other.Rank()
}

// Record is one raw row from a feed, already projected onto the shared field
// names. Records are immutable once read.
type Record struct {
	Feed         string
	Kind         Kind
	Name         string
	Website      string
	Location     string
	CategoryHint string
	CorpType     string
	// Filter carries the feed's FilterCooperative setting so the normalizer
	// knows whether this record came from a broad registry dump.
	Filter bool
}

// FieldMap names the feed columns that carry each record field. Empty entries
// mean the feed does not provide that field.
type FieldMap struct {
	Name     string `toml:"name"`
	Website  string `toml:"website"`
	Location string `toml:"location"`
	Category string `toml:"category"`
	CorpType string `toml:"corp_type"`
}

// Feed describes one input feed file.
type Feed struct {
	ID string
	// Kind decides merge priority for records contributed by this feed.
	Kind Kind
	// Path points at the exported feed file.
	Path string
	// Format is "csv" or "json".
	Format string
	Fields FieldMap
	// FilterCooperative restricts broad registry dumps to records whose name
	// or corporation type suggests a cooperative.
	FilterCooperative bool
}
