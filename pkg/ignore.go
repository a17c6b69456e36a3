package dcfhdupes

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreManager matches walker paths, relative to their input root, against
// the regular expressions of an ignore file. One pattern per line; blank
// lines and lines starting with '#' are skipped.
type IgnoreManager struct {
	source   string
	patterns []*regexp.Regexp
	loaded   bool
}

// NewIgnoreManager creates a manager for the ignore file at source. An empty
// source matches nothing.
func NewIgnoreManager(source string) *IgnoreManager {
	return &IgnoreManager{source: source}
}

// LoadIgnorePatterns reads and compiles the ignore file once
func (im *IgnoreManager) LoadIgnorePatterns() error {
	if im.loaded || im.source == "" {
		im.loaded = true
		return nil
	}

	f, err := os.Open(im.source)
	if err != nil {
		return fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer f.Close()

	patterns, err := parseIgnorePatterns(f)
	if err != nil {
		return fmt.Errorf("%s: %w", im.source, err)
	}
	im.patterns = patterns
	im.loaded = true

	if IsDebugEnabled("scan") {
		VerboseLog(2, "scan: %d ignore patterns from %s", len(patterns), im.source)
	}
	return nil
}

// parseIgnorePatterns compiles one pattern per non-comment line of r
func parseIgnorePatterns(r io.Reader) ([]*regexp.Regexp, error) {
	var patterns []*regexp.Regexp
	lines := bufio.NewScanner(r)
	for n := 1; lines.Scan(); n++ {
		line := strings.TrimSpace(lines.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid pattern %q: %w", n, line, err)
		}
		patterns = append(patterns, re)
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("read ignore patterns: %w", err)
	}
	return patterns, nil
}

// ShouldIgnore reports whether relPath matches any pattern. Separators are
// normalised to '/' before matching.
func (im *IgnoreManager) ShouldIgnore(relPath string) bool {
	slashed := filepath.ToSlash(relPath)
	for _, re := range im.patterns {
		if re.MatchString(slashed) {
			return true
		}
	}
	return false
}

// HasPatterns reports whether any pattern is loaded; the walker skips
// matching entirely when there are none
func (im *IgnoreManager) HasPatterns() bool {
	return len(im.patterns) > 0
}
