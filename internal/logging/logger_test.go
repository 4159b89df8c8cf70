package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coopscout/internal/config"
)

func newBufferedConsole(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newConsoleHandler(&buf, levelVar)), &buf
}

func TestConsoleHandlerLineLayout(t *testing.T) {
	logger, buf := newBufferedConsole(slog.LevelInfo)

	logger.Info("feed read",
		slog.String(FieldComponent, "ingest"),
		slog.String("feed", "state-registry"),
		slog.Int("records", 412),
	)

	line := strings.TrimRight(buf.String(), "\n")
	if !strings.Contains(line, "INFO  [ingest] feed read") {
		t.Errorf("line missing level/component/message: %q", line)
	}
	if !strings.Contains(line, "(feed=state-registry records=412)") {
		t.Errorf("line missing attributes: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component not lifted out of the attribute list: %q", line)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	logger, buf := newBufferedConsole(slog.LevelInfo)

	logger.Info("candidate verified", slog.String("name", "Valley Grains Cooperative"))

	if !strings.Contains(buf.String(), `name="Valley Grains Cooperative"`) {
		t.Errorf("spaced value not quoted: %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	logger, buf := newBufferedConsole(slog.LevelWarn)

	logger.Info("suppressed")
	logger.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info line emitted below the configured level")
	}
	if !strings.Contains(out, "WARN  emitted") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestConsoleHandlerCarriesWithAttrs(t *testing.T) {
	logger, buf := newBufferedConsole(slog.LevelInfo)

	NewComponentLogger(logger, "rank").Info("ranking complete", slog.Int("scored", 7))

	if !strings.Contains(buf.String(), "[rank] ranking complete (scored=7)") {
		t.Errorf("With attributes lost: %q", buf.String())
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar))

	logger.Info("ingest complete", slog.Int("new", 12))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("not valid json: %v", err)
	}
	if record["msg"] != "ingest complete" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Errorf("level = %v", record["level"])
	}
	if _, ok := record["ts"].(string); !ok {
		t.Errorf("ts missing or not a string: %v", record["ts"])
	}
	if record["new"] != float64(12) {
		t.Errorf("attribute lost: %v", record["new"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("unknown format accepted")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	logger.Info("startup")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "coopscout.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "startup") {
		t.Errorf("log file missing record: %q", data)
	}
}

func TestParseLevelDefaults(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	// Must not panic and must report disabled at every level.
	logger := NewNop()
	logger.Error("discarded", Error(nil))
	if logger.Enabled(nil, slog.LevelError) {
		t.Error("nop logger claims to be enabled")
	}
}
