package review

import (
	"fmt"
	"io"
	"strings"

	"coopscout/internal/similarity"
	"coopscout/internal/webfetch"
)

// previewChars bounds how much extracted website text the candidate card
// shows.
const previewChars = 500

// RenderCandidate writes the review card for one queued candidate.
func RenderCandidate(w io.Writer, position int, item similarity.Ranked) {
	entity := item.Entity

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 72))
	fmt.Fprintf(w, "#%d  %s\n", position, entity.Name)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 72))

	if item.Scored {
		if item.Deprioritized {
			fmt.Fprintf(w, "similarity: %.3f (below threshold)\n", item.Score)
		} else {
			fmt.Fprintf(w, "similarity: %.3f\n", item.Score)
		}
	} else {
		fmt.Fprintln(w, "similarity: unscored")
	}
	fmt.Fprintf(w, "category:   %s\n", entity.Category)
	if entity.Location != "" {
		fmt.Fprintf(w, "location:   %s\n", entity.Location)
	}
	if entity.Website != "" {
		fmt.Fprintf(w, "website:    %s\n", entity.Website)
	}
	fmt.Fprintf(w, "sources:    %s (%s)\n", strings.Join(entity.Sources, ", "), entity.Provenance)
	if entity.ContentUnavailable {
		fmt.Fprintln(w, "note:       website content unavailable")
	}

	if len(item.Nearest) > 0 {
		fmt.Fprintln(w, "\nclosest verified:")
		for _, match := range item.Nearest {
			fmt.Fprintf(w, "  %.3f  %s (%s)\n", match.Score, match.Name, match.Category)
		}
	}

	if entity.Snippet != "" {
		fmt.Fprintf(w, "\n%s\n", webfetch.Truncate(entity.Snippet, previewChars))
	}
	fmt.Fprintln(w)
}
