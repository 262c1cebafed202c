package model

import (
	"sort"
	"time"
)

// CorpusItem identifies one input file of the corpus.
//
// Items are created once by the enumerator and never modified. Index is
// the position of the item after sorting and defines the canonical order
// used for dispatch and for reproducible output. It says nothing about the
// order in which results complete.
type CorpusItem struct {
	// Path is the normalized path of the file, using '/' as separator.
	Path string

	// Index is the zero-based position of the item in the sorted corpus.
	Index int
}

// ExtractionResult is the outcome of processing one CorpusItem.
//
// Exactly one result is produced per item. Err is nil on success; when it
// is set, Tokens must be ignored.
type ExtractionResult struct {
	// Item is the corpus item the result belongs to.
	Item CorpusItem

	// Tokens holds the extracted tokens in chronological order.
	Tokens []Token

	// Err describes why the item could not be processed.
	Err error

	// Fallback is true when the item had no partitionable structure and
	// the whole score's event stream was used instead of a single part.
	Fallback bool

	// Duration is the time spent extracting the item.
	Duration time.Duration
}

// Failed reports whether the result carries an error.
func (r ExtractionResult) Failed() bool {
	return r.Err != nil
}

// Failure records an item that could not be processed.
type Failure struct {
	Path   string
	Reason string
}

// ResultMapping maps a corpus path to its token sequence.
type ResultMapping map[string][]Token

// Corpus is the aggregated output of one run.
//
// Every enumerated path appears either in Mapping or in Failures, never in
// both. Failures is kept sorted by path.
type Corpus struct {
	Mapping  ResultMapping
	Failures []Failure
}

// NewCorpus creates an empty Corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		Mapping:  make(ResultMapping),
		Failures: []Failure{},
	}
}

// Len returns the number of paths recorded in the corpus, successful or not.
func (c *Corpus) Len() int {
	return len(c.Mapping) + len(c.Failures)
}

// Paths returns the sorted list of successfully tokenized paths.
func (c *Corpus) Paths() []string {
	paths := make([]string, 0, len(c.Mapping))
	for p := range c.Mapping {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// AllPaths returns the sorted union of successful and failed paths.
func (c *Corpus) AllPaths() []string {
	paths := c.Paths()
	for _, f := range c.Failures {
		paths = append(paths, f.Path)
	}
	sort.Strings(paths)
	return paths
}

// SortFailures orders Failures by path.
func (c *Corpus) SortFailures() {
	sort.Slice(c.Failures, func(i, j int) bool {
		return c.Failures[i].Path < c.Failures[j].Path
	})
}

// TokenCount returns the total number of tokens across all successful paths.
func (c *Corpus) TokenCount() int {
	n := 0
	for _, toks := range c.Mapping {
		n += len(toks)
	}
	return n
}
