package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/handiism/notecorpus/internal/model"
	"github.com/handiism/notecorpus/internal/score"
)

// Extractor converts corpus items into tokens.
type Extractor struct {
	parser   score.Parser
	selector score.PartSelector
}

// New creates an Extractor. A nil selector uses score.DefaultSelector.
func New(parser score.Parser, selector score.PartSelector) *Extractor {
	if selector == nil {
		selector = score.DefaultSelector()
	}
	return &Extractor{
		parser:   parser,
		selector: selector,
	}
}

// Extract processes one item and always returns a result for it.
func (e *Extractor) Extract(ctx context.Context, item model.CorpusItem) (result model.ExtractionResult) {
	start := time.Now()
	result.Item = item

	defer func() {
		if r := recover(); r != nil {
			result.Tokens = nil
			result.Err = &score.ParseError{Path: item.Path, Err: fmt.Errorf("parser panic: %v", r)}
		}
		result.Duration = time.Since(start)
	}()

	events, fallback, err := e.events(ctx, item.Path)
	if err != nil {
		result.Err = err
		return result
	}

	result.Tokens = Tokens(events)
	result.Fallback = fallback
	return result
}

// events returns the event stream for path and whether the fallback was used.
func (e *Extractor) events(ctx context.Context, path string) ([]score.Event, bool, error) {
	sc, err := e.parser.Parse(ctx, path)
	if err != nil {
		return nil, false, wrapParseError(path, err)
	}

	ps, err := sc.PartitionByInstrument()
	if err == nil {
		var part score.Part
		part, err = e.selector.Select(ps.Parts())
		if err == nil {
			return part.Events, false, nil
		}
	}
	if errors.Is(err, score.ErrNoPartition) {
		return sc.Flatten(), true, nil
	}
	return nil, false, wrapParseError(path, err)
}

// wrapParseError makes sure a failure carries the item path exactly once.
func wrapParseError(path string, err error) error {
	var pe *score.ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &score.ParseError{Path: path, Err: err}
}

// Tokens converts events into tokens, keeping their order.
//
// Single-pitch events become note tokens and multi-pitch events chord
// tokens. Rests and non-pitched events are skipped.
//
// Example:
//
//	Tokens([]score.Event{
//	    {Kind: score.EventNote, Keys: []uint8{60}},
//	    {Kind: score.EventRest},
//	    {Kind: score.EventChord, Keys: []uint8{64, 60, 67}},
//	}) // ["C4", "0.4.7"]
func Tokens(events []score.Event) []model.Token {
	tokens := make([]model.Token, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case score.EventNote:
			if len(ev.Keys) == 0 {
				continue
			}
			tokens = append(tokens, model.NoteToken(ev.Keys[0]))
		case score.EventChord:
			if len(ev.Keys) == 0 {
				continue
			}
			tokens = append(tokens, model.ChordTokenFromKeys(ev.Keys))
		}
	}
	return tokens
}
