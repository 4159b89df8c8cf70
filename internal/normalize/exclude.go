package normalize

import "regexp"

// exclusionPatterns drop records that carry cooperative naming but are not
// the organizations this registry tracks, chiefly housing and residential
// co-ops that dominate state registry dumps.
var exclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`housing`),
	regexp.MustCompile(`residential`),
	regexp.MustCompile(`homeowners`),
	regexp.MustCompile(`apartment`),
	regexp.MustCompile(`condo`),
	regexp.MustCompile(`homestead cooperative`),
	regexp.MustCompile(`^\d+.*co-?op`),
	regexp.MustCompile(`street.*co-?op`),
	regexp.MustCompile(`avenue.*co-?op`),
	regexp.MustCompile(`drive.*co-?op`),
	regexp.MustCompile(`place.*co-?op`),
	regexp.MustCompile(`properties cooperative`),
}

// excludedCorpTypes are corporation-type codes that are never candidates.
var excludedCorpTypes = map[string]struct{}{
	"MULTIPLE HOUSING ACT": {},
}

// Excluded reports whether the record is filtered out before candidacy.
func Excluded(nameLower, corpType string) bool {
	if _, drop := excludedCorpTypes[corpType]; drop {
		return true
	}
	for _, pattern := range exclusionPatterns {
		if pattern.MatchString(nameLower) {
			return true
		}
	}
	return false
}

// cooperativeKeywords gate broad registry dumps: a record from a feed with
// FilterCooperative set must look like a cooperative by name or by
// corporation type to become a candidate.
var cooperativeKeywords = []string{
	"cooperative",
	"co-operative",
	"co-op",
	"coop",
	"credit union",
	"rural electric",
	"power cooperative",
	"telephone cooperative",
	"mutual",
}

// cooperativeCorpTypes are corporation-type codes that mark a record as a
// cooperative regardless of its name.
var cooperativeCorpTypes = map[string]struct{}{
	"CO-OP NON STOCK":         {},
	"CO-OP STOCK":             {},
	"DOMESTIC COOPERATIVE":    {},
	"CO-OP STOCK VALUE ADDED": {},
}
