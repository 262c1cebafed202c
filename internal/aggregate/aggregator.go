package aggregate

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/handiism/notecorpus/internal/model"
)

// ErrIncomplete is returned by Result when some items have no result yet.
var ErrIncomplete = errors.New("aggregation incomplete")

// ErrDuplicate is returned by Add when a path was already recorded.
var ErrDuplicate = errors.New("duplicate result")

// Progress is a monotonically increasing completed counter.
type Progress struct {
	completed atomic.Int64
	total     int64
}

// NewProgress creates a Progress for total items.
func NewProgress(total int) *Progress {
	return &Progress{total: int64(total)}
}

// Inc records one completed item.
func (p *Progress) Inc() {
	p.completed.Add(1)
}

// Get returns the completed and total counts.
func (p *Progress) Get() (completed, total int) {
	return int(p.completed.Load()), int(p.total)
}

// Aggregator merges extraction results into a Corpus. It is safe for
// concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	corpus   *model.Corpus
	seen     map[string]bool
	progress *Progress

	failed     atomic.Int64
	fallbacks  atomic.Int64
	duplicates atomic.Int64
}

// New creates an Aggregator expecting total results.
func New(total int) *Aggregator {
	return &Aggregator{
		corpus:   model.NewCorpus(),
		seen:     make(map[string]bool, total),
		progress: NewProgress(total),
	}
}

// Add records one result. Successful results go to the mapping, failed
// ones to the failure list. A second result for an already recorded path
// is dropped and reported with ErrDuplicate; the first one wins.
func (a *Aggregator) Add(result model.ExtractionResult) error {
	path := result.Item.Path

	a.mu.Lock()
	if a.seen[path] {
		a.mu.Unlock()
		a.duplicates.Add(1)
		return fmt.Errorf("%s: %w", path, ErrDuplicate)
	}
	a.seen[path] = true

	if result.Err != nil {
		a.corpus.Failures = append(a.corpus.Failures, model.Failure{
			Path:   path,
			Reason: result.Err.Error(),
		})
	} else {
		tokens := result.Tokens
		if tokens == nil {
			tokens = []model.Token{}
		}
		a.corpus.Mapping[path] = tokens
	}
	a.mu.Unlock()

	if result.Err != nil {
		a.failed.Add(1)
	} else if result.Fallback {
		a.fallbacks.Add(1)
	}
	a.progress.Inc()
	return nil
}

// Progress returns the completed and total counts without locking.
func (a *Aggregator) Progress() (completed, total int) {
	return a.progress.Get()
}

// Done reports whether every expected result has been recorded.
func (a *Aggregator) Done() bool {
	completed, total := a.progress.Get()
	return completed == total
}

// Stats returns the number of failed items, fallbacks and dropped duplicates.
func (a *Aggregator) Stats() (failed, fallbacks, duplicates int) {
	return int(a.failed.Load()), int(a.fallbacks.Load()), int(a.duplicates.Load())
}

// Missing returns the paths of items that have no result yet.
func (a *Aggregator) Missing(items []model.CorpusItem) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var missing []string
	for _, it := range items {
		if !a.seen[it.Path] {
			missing = append(missing, it.Path)
		}
	}
	return missing
}

// Result returns the aggregated corpus with failures sorted by path.
//
// It fails with ErrIncomplete until every expected result has been added.
func (a *Aggregator) Result() (*model.Corpus, error) {
	completed, total := a.progress.Get()
	if completed != total {
		return nil, fmt.Errorf("%w: %d of %d results", ErrIncomplete, completed, total)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.corpus.SortFailures()
	return a.corpus, nil
}

// ResultFor is like Result but checks completeness against items and names
// the missing paths in the error.
func (a *Aggregator) ResultFor(items []model.CorpusItem) (*model.Corpus, error) {
	if missing := a.Missing(items); len(missing) > 0 {
		shown := missing
		if len(shown) > 5 {
			shown = shown[:5]
		}
		return nil, fmt.Errorf("%w: %d missing (%s)", ErrIncomplete, len(missing), strings.Join(shown, ", "))
	}
	return a.Result()
}
