package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"coopscout/internal/sources"
)

// WriteFeedFile writes feed content to a temp file and returns a feed
// descriptor pointing at it.
func WriteFeedFile(t testing.TB, feed sources.Feed, content string) sources.Feed {
	t.Helper()

	ext := "." + feed.Format
	path := filepath.Join(t.TempDir(), feed.ID+ext)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write feed %s: %v", feed.ID, err)
	}
	feed.Path = path
	return feed
}
