package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Score", "Name"},
		[][]string{
			{"0.812", "Prairie Grain Cooperative"},
			{"0.4", "Hillside Mutual"},
			{"-"},
		},
		0,
	)

	for _, want := range []string{"Score", "Prairie Grain Cooperative", "Hillside Mutual"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	// Numeric columns are right-aligned, so the short score sits further in
	// than the long one.
	lines := strings.Split(out, "\n")
	long := strings.Index(findLine(t, lines, "0.812"), "0.812")
	short := strings.Index(findLine(t, lines, "0.4"), "0.4")
	if short <= long {
		t.Errorf("score column not right-aligned: %d vs %d\n%s", short, long, out)
	}

	// A short row is padded rather than dropped.
	if !strings.Contains(out, "-") {
		t.Errorf("padded row missing:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Errorf("renderTable(nil, ...) = %q, want empty", out)
	}
}

func findLine(t *testing.T, lines []string, substr string) string {
	t.Helper()
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return line
		}
	}
	t.Fatalf("no line containing %q", substr)
	return ""
}
