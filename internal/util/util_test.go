package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestLineAndColumn(t *testing.T) {
	src := "(a\n  b\n\tc)"
	tests := []struct {
		pos          int
		line, column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{5, 2, 3},
		{8, 3, 2},
		{100, 3, 4},
	}

	for _, tt := range tests {
		line, col := LineAndColumn(src, tt.pos)
		if line != tt.line || col != tt.column {
			t.Errorf("pos %d: expected %d:%d, got %d:%d", tt.pos, tt.line, tt.column, line, col)
		}
	}
}

func TestContextLines(t *testing.T) {
	src := "(one)\n(two)\n(three\n(four)"
	out := ContextLines(src, strings.Index(src, "three"), "here")

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasSuffix(lines[0], "| (one)") || !strings.HasSuffix(lines[1], "| (two)") {
		t.Errorf("unexpected context %q", out)
	}
	if !strings.HasPrefix(lines[2], "  >    3 | ") {
		t.Errorf("expected marked line 3, got %q", lines[2])
	}
	caret := strings.Index(lines[3], "^")
	if caret != strings.Index(lines[2], "three") {
		t.Errorf("expected caret under column of 'three', got %q", lines[3])
	}
	if !strings.HasSuffix(lines[3], "^ here") {
		t.Errorf("expected note after caret, got %q", lines[3])
	}
}

func TestContextLinesMultiByte(t *testing.T) {
	src := "(setq s \"ééé\" x )"
	out := ContextLines(src, strings.LastIndex(src, ")"), "here")

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	caret := utf8.RuneCountInString(lines[1][:strings.Index(lines[1], "^")])
	paren := utf8.RuneCountInString(lines[0][:strings.LastIndex(lines[0], ")")])
	if caret != paren {
		t.Errorf("expected caret at rune column %d, got %d", paren, caret)
	}
}

func TestLoadConfiguration(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadConfiguration(filepath.Join(dir, "absent.toml"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg != DefaultConfiguration() {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		path := write("lisp.toml", `
log_level = "debug"
max_depth = 50

[image]
driver = "sqlite3"
dsn = "file:lisp.db"
`)
		cfg, err := LoadConfiguration(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.LogLevel != "debug" || cfg.MaxDepth != 50 {
			t.Errorf("unexpected top level %+v", cfg)
		}
		if cfg.Image.Driver != "sqlite3" || cfg.Image.DSN != "file:lisp.db" {
			t.Errorf("unexpected image %+v", cfg.Image)
		}
		if cfg.Image.Name != "default" {
			t.Errorf("expected default image name, got %s", cfg.Image.Name)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		path := write("bad.toml", `log_levle = "debug"`)
		if _, err := LoadConfiguration(path); err == nil {
			t.Error("expected error for unknown key")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		path := write("broken.toml", `log_level = `)
		if _, err := LoadConfiguration(path); err == nil {
			t.Error("expected error for malformed file")
		}
	})

	t.Run("negative depth", func(t *testing.T) {
		path := write("depth.toml", `max_depth = -1`)
		if _, err := LoadConfiguration(path); err == nil {
			t.Error("expected error for negative depth")
		}
	})
}
