package log

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	cases := []struct {
		input    string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", LevelNone},
		{"", slog.LevelError},
		{"bogus", slog.LevelError},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			if got := LevelFromString(c.input); got != c.expected {
				t.Errorf("expected %s, got %s", c.expected, got)
			}
		})
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lisp.log")
	l := New("info", path)
	defer l.Close()

	if l.Path() != path {
		t.Fatalf("expected file output, got %q", l.Path())
	}
	l.Debug("hidden")
	l.Info("shown", slog.Int("n", 1))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %s", len(lines), data)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatal(err)
	}
	if record["msg"] != "shown" || record["n"] != float64(1) {
		t.Errorf("unexpected record %v", record)
	}
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lisp.log")
	l := New("info", path)
	defer l.Close()

	l.Info("before")
	if err := os.Rename(path, filepath.Join(dir, "lisp.bak")); err != nil {
		t.Fatal(err)
	}
	if err := l.out.reopen(); err != nil {
		t.Fatal(err)
	}
	l.Info("after")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "after") || strings.Contains(string(data), "before") {
		t.Errorf("unexpected log content %s", data)
	}
}

func TestFallbackToStderr(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	l := New("error", filepath.Join(blocker, "lisp.log"))
	defer l.Close()
	if l.Path() != "" {
		t.Errorf("expected stderr fallback, got %q", l.Path())
	}
}
