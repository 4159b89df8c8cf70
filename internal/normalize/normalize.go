package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// URL reduces a website URL to its canonical dedup key: scheme and "www."
// stripped, host lowercased, query/fragment and trailing slash removed.
// URL is idempotent: URL(URL(x)) == URL(x).
func URL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	lower := strings.ToLower(value)
	for _, scheme := range []string{"https://", "http://", "//"} {
		if strings.HasPrefix(lower, scheme) {
			value = value[len(scheme):]
			lower = lower[len(scheme):]
			break
		}
	}
	if strings.HasPrefix(lower, "www.") {
		value = value[4:]
	}

	if idx := strings.IndexAny(value, "?#"); idx >= 0 {
		value = value[:idx]
	}

	host := value
	path := ""
	if idx := strings.Index(value, "/"); idx >= 0 {
		host, path = value[:idx], value[idx:]
	}
	host = strings.ToLower(host)
	path = strings.TrimRight(path, "/")

	return host + path
}

var (
	namePunctuation = regexp.MustCompile(`["',.&]`)
	nameWhitespace  = regexp.MustCompile(`\s+`)
)

// corporateSuffixes are trimmed from the end of normalized names so legal
// form variants ("Acme Co-op" vs "Acme Co-op, Inc.") compare equal.
var corporateSuffixes = []string{
	" incorporated",
	" inc",
	" llc",
	" ltd",
}

// Name reduces an organization name to its fallback dedup key: lowercased,
// punctuation removed, corporate suffixes trimmed, whitespace collapsed.
// Name is idempotent.
func Name(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = namePunctuation.ReplaceAllString(value, "")
	value = nameWhitespace.ReplaceAllString(value, " ")
	for trimmed := true; trimmed; {
		trimmed = false
		for _, suffix := range corporateSuffixes {
			if strings.HasSuffix(value, suffix) && len(value) > len(suffix) {
				value = strings.TrimSpace(strings.TrimSuffix(value, suffix))
				trimmed = true
			}
		}
	}
	return strings.TrimSpace(value)
}

var titleCaser = cases.Title(language.English)

// DisplayName keeps the source spelling except for all-caps registry dumps,
// which are title-cased for presentation.
func DisplayName(raw string) string {
	value := nameWhitespace.ReplaceAllString(strings.TrimSpace(raw), " ")
	if value == "" {
		return ""
	}
	if value == strings.ToUpper(value) && value != strings.ToLower(value) {
		return titleCaser.String(strings.ToLower(value))
	}
	return value
}
