package webfetch

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptPattern     = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	stylePattern      = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	commentPattern    = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
	blankLinePattern  = regexp.MustCompile(`\n{3,}`)
)

// ExtractText strips markup down to the visible text of a page. It is a
// snippet extractor, not an HTML parser: the output feeds the embedder and
// the review preview, where rough plain text is all that is needed.
func ExtractText(markup string) string {
	text := scriptPattern.ReplaceAllString(markup, " ")
	text = stylePattern.ReplaceAllString(text, " ")
	text = commentPattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, "\n")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return blankLinePattern.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")
}

// Truncate caps text at max characters on a rune boundary.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
