package log

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", LevelNone},
		{"", LevelNone},
		{"verbose", LevelNone},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		rec := map[string]any{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		records = append(records, rec)
	}
	return records
}

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quill.log")
	logger, closer, err := Setup("debug", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("push stack frame", slog.String("frame", "proc greet"))
	logger.Log(context.Background(), LevelTrace, "too detailed")
	if err := closer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	records := readLines(t, path)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["msg"] != "push stack frame" || records[0]["frame"] != "proc greet" {
		t.Errorf("unexpected record %v", records[0])
	}
}

func TestTraceLevelName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.log")
	logger, closer, err := Setup("trace", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Log(context.Background(), LevelTrace, "detail")
	_ = closer.Close()

	records := readLines(t, path)
	if len(records) != 1 || records[0]["level"] != "TRACE" {
		t.Errorf("expected one TRACE record, got %v", records)
	}
}

func TestNoneSilencesEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.log")
	logger, closer, err := Setup("none", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Error("should not appear")
	_ = closer.Close()

	if records := readLines(t, path); len(records) != 0 {
		t.Errorf("expected no records, got %v", records)
	}
}

func TestReopenFollowsRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.log")

	fw, err := openFileWriter(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fw.Close()

	_, _ = fw.Write([]byte("{\"msg\":\"before\"}\n"))
	if err := os.Rename(path, filepath.Join(dir, "quill.bak")); err != nil {
		t.Fatal(err)
	}
	if err := fw.reopen(); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	_, _ = fw.Write([]byte("{\"msg\":\"after\"}\n"))

	records := readLines(t, path)
	if len(records) != 1 || records[0]["msg"] != "after" {
		t.Errorf("expected only the post-rotation record, got %v", records)
	}
}

func TestWriteAfterClose(t *testing.T) {
	fw, err := openFileWriter(filepath.Join(t.TempDir(), "quill.log"))
	if err != nil {
		t.Fatal(err)
	}
	_ = fw.Close()
	if _, err := fw.Write([]byte("x")); err == nil {
		t.Errorf("expected an error writing to a closed log")
	}
}
