package normalize

import (
	"strings"

	"coopscout/internal/registry"
)

// Rule maps name keywords and corporation-type codes to a category. Rules are
// evaluated in order; the first match wins.
type Rule struct {
	Category  registry.Category
	Keywords  []string
	CorpTypes []string
}

// DefaultRules returns the ordered classification table. Order matters:
// "rural electric cooperative" must classify as electric before the generic
// agricultural keywords get a chance.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: registry.CategoryCredit,
			Keywords: []string{"credit union"},
		},
		{
			Category: registry.CategoryElectric,
			Keywords: []string{"electric", "rural electric", "power cooperative", "rec"},
		},
		{
			Category: registry.CategoryTelecom,
			Keywords: []string{"telephone", "telecom", "communications", "broadband"},
		},
		{
			Category: registry.CategoryEnergy,
			Keywords: []string{"energy", "propane", "gas cooperative"},
		},
		{
			Category: registry.CategoryFood,
			Keywords: []string{"food", "grocery", "market", "natural foods"},
		},
		{
			Category: registry.CategoryAgricultural,
			Keywords: []string{"farm", "farmers", "grain", "elevator", "seed", "agri", "dairy", "ag "},
			CorpTypes: []string{
				"CO-OP STOCK VALUE ADDED",
			},
		},
		{
			Category: registry.CategoryMutual,
			Keywords: []string{"mutual"},
		},
		{
			Category: registry.CategoryPurchasing,
			Keywords: []string{"purchasing", "supply cooperative", "buying group"},
		},
	}
}

// Classify assigns a category from the rule table, falling back to "other"
// so a candidate never carries an empty category.
func Classify(rules []Rule, name, corpType string) registry.Category {
	nameLower := strings.ToLower(name)
	corpUpper := strings.ToUpper(strings.TrimSpace(corpType))
	for _, rule := range rules {
		for _, code := range rule.CorpTypes {
			if corpUpper != "" && corpUpper == code {
				return rule.Category
			}
		}
		for _, keyword := range rule.Keywords {
			if keywordMatch(nameLower, keyword) {
				return rule.Category
			}
		}
	}
	return registry.CategoryOther
}

// keywordMatch requires short keywords to appear as whole words so "rec"
// cannot match inside "recreation".
func keywordMatch(nameLower, keyword string) bool {
	if len(keyword) > 4 || strings.ContainsRune(keyword, ' ') {
		return strings.Contains(nameLower, keyword)
	}
	for rest := nameLower; ; {
		idx := strings.Index(rest, keyword)
		if idx < 0 {
			return false
		}
		beforeOK := idx == 0 || !isWordChar(rest[idx-1])
		afterIdx := idx + len(keyword)
		afterOK := afterIdx >= len(rest) || !isWordChar(rest[afterIdx])
		if beforeOK && afterOK {
			return true
		}
		rest = rest[afterIdx:]
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
