package corpus

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/handiism/notecorpus/internal/model"
)

var (
	// ErrBadPattern reports a malformed glob pattern.
	ErrBadPattern = errors.New("malformed pattern")

	// ErrEmptyCorpus reports that no file matched.
	ErrEmptyCorpus = errors.New("no files matched")
)

// EnumerationError is returned when the corpus cannot be enumerated.
// It is fatal: nothing is dispatched.
type EnumerationError struct {
	Pattern string
	Err     error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerate %q: %v", e.Pattern, e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// Enumerate expands pattern into sorted corpus items.
func Enumerate(pattern string) ([]model.CorpusItem, error) {
	return EnumeratePatterns([]string{pattern})
}

// EnumeratePatterns expands several patterns into one sorted, deduplicated
// list of corpus items.
//
// It fails with an *EnumerationError wrapping ErrBadPattern if any pattern
// is malformed, and wrapping ErrEmptyCorpus if the union matches nothing.
func EnumeratePatterns(patterns []string) ([]model.CorpusItem, error) {
	joined := strings.Join(patterns, ", ")
	if len(patterns) == 0 {
		return nil, &EnumerationError{Pattern: joined, Err: ErrEmptyCorpus}
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := glob(pattern)
		if err != nil {
			return nil, &EnumerationError{Pattern: pattern, Err: err}
		}
		for _, m := range matches {
			p := Normalize(m)
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}

	if len(paths) == 0 {
		return nil, &EnumerationError{Pattern: joined, Err: ErrEmptyCorpus}
	}

	sort.Strings(paths)

	items := make([]model.CorpusItem, len(paths))
	for i, p := range paths {
		items[i] = model.CorpusItem{Path: p, Index: i}
	}
	return items, nil
}

// glob matches regular files for one pattern.
func glob(pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrBadPattern)
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return nil, ErrBadPattern
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			return nil, ErrBadPattern
		}
		return nil, err
	}
	return matches, nil
}

// Normalize converts a path to the corpus convention: cleaned, with '/'
// separators regardless of platform.
//
// Example:
//
//	Normalize(`data\bach\bwv772.mid`) // "data/bach/bwv772.mid" on Windows
//	Normalize("./data//a.mid")        // "data/a.mid"
func Normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
