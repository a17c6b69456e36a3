package dcfhdupes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseIgnorePatterns(t *testing.T) {
	input := "# build output\n\n  ^build/  \n\\.o$\n#.*\n"
	patterns, err := parseIgnorePatterns(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseIgnorePatterns failed: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("Expected 2 patterns, got %d", len(patterns))
	}

	_, err = parseIgnorePatterns(strings.NewReader("ok\n(unclosed\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected error naming line 2, got %v", err)
	}
}

func TestIgnoreManager_ShouldIgnore(t *testing.T) {
	ignoreFile := filepath.Join(t.TempDir(), "ignore")
	if err := os.WriteFile(ignoreFile, []byte("^build/\n\\.o$\n"), 0644); err != nil {
		t.Fatalf("Failed to write ignore file: %v", err)
	}

	im := NewIgnoreManager(ignoreFile)
	if im.HasPatterns() {
		t.Error("Patterns must not be present before loading")
	}
	if err := im.LoadIgnorePatterns(); err != nil {
		t.Fatalf("LoadIgnorePatterns failed: %v", err)
	}
	if !im.HasPatterns() {
		t.Fatal("Expected patterns after loading")
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{filepath.Join("build", "out.bin"), true},
		{filepath.Join("src", "main.o"), true},
		{filepath.Join("src", "main.c"), false},
		{"rebuild", false},
	}
	for _, tt := range tests {
		if got := im.ShouldIgnore(tt.path); got != tt.expected {
			t.Errorf("ShouldIgnore(%s) = %v, expected %v", tt.path, got, tt.expected)
		}
	}
}

func TestIgnoreManager_NoSource(t *testing.T) {
	im := NewIgnoreManager("")
	if err := im.LoadIgnorePatterns(); err != nil {
		t.Fatalf("LoadIgnorePatterns failed: %v", err)
	}
	if im.HasPatterns() || im.ShouldIgnore("anything") {
		t.Error("An empty source must match nothing")
	}

	missing := NewIgnoreManager(filepath.Join(t.TempDir(), "missing"))
	if err := missing.LoadIgnorePatterns(); err == nil {
		t.Error("Expected error for a missing ignore file")
	}
}
