// Package scoretest provides an in-memory score.Parser for tests.
package scoretest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/notecorpus/internal/score"
)

// ErrCorrupt is returned for paths registered with Corrupt.
var ErrCorrupt = errors.New("corrupt score")

// Score is a fake score.Score.
type Score struct {
	Parts        []score.Part
	Flat         []score.Event
	PartitionErr error
}

// PartitionByInstrument implements score.Score.
func (s *Score) PartitionByInstrument() (score.PartitionedScore, error) {
	if s.PartitionErr != nil {
		return nil, s.PartitionErr
	}
	if s.Parts == nil {
		return nil, score.ErrNoPartition
	}
	return score.Parts(s.Parts), nil
}

// Flatten implements score.Score.
func (s *Score) Flatten() []score.Event {
	return s.Flat
}

type entry struct {
	score *Score
	err   error
	panic bool
	delay time.Duration
}

// Parser is a fake score.Parser keyed by path. Unknown paths fail with
// a *score.ParseError wrapping ErrCorrupt.
type Parser struct {
	mu      sync.Mutex
	entries map[string]entry
	calls   atomic.Int64
}

// NewParser creates an empty fake Parser.
func NewParser() *Parser {
	return &Parser{entries: make(map[string]entry)}
}

// Set registers a score for path.
func (p *Parser) Set(path string, sc *Score) *Parser {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[path] = entry{score: sc}
	return p
}

// SetDelayed registers a score that takes d to parse.
func (p *Parser) SetDelayed(path string, sc *Score, d time.Duration) *Parser {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[path] = entry{score: sc, delay: d}
	return p
}

// Corrupt makes Parse fail for path.
func (p *Parser) Corrupt(path string) *Parser {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[path] = entry{err: &score.ParseError{Path: path, Err: ErrCorrupt}}
	return p
}

// Fail makes Parse return err unchanged for path.
func (p *Parser) Fail(path string, err error) *Parser {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[path] = entry{err: err}
	return p
}

// Panic makes Parse panic for path.
func (p *Parser) Panic(path string) *Parser {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[path] = entry{panic: true}
	return p
}

// Calls returns how many times Parse was called.
func (p *Parser) Calls() int {
	return int(p.calls.Load())
}

// Parse implements score.Parser.
func (p *Parser) Parse(ctx context.Context, path string) (score.Score, error) {
	p.calls.Add(1)

	p.mu.Lock()
	e, ok := p.entries[path]
	p.mu.Unlock()

	if !ok {
		return nil, &score.ParseError{Path: path, Err: ErrCorrupt}
	}
	if e.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.delay):
		}
	}
	if e.panic {
		panic(fmt.Sprintf("fake parser panic for %s", path))
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.score, nil
}

// Note returns a single-pitch event.
func Note(offset int64, key uint8) score.Event {
	return score.Event{Offset: offset, Kind: score.EventNote, Keys: []uint8{key}}
}

// Chord returns a multi-pitch event.
func Chord(offset int64, keys ...uint8) score.Event {
	return score.Event{Offset: offset, Kind: score.EventChord, Keys: keys}
}

// Rest returns a rest event.
func Rest(offset int64) score.Event {
	return score.Event{Offset: offset, Kind: score.EventRest}
}
