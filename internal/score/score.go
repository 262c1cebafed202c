package score

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoPartition reports that a score has no instrument structure to
// partition, or that the selection policy found no usable part. It is an
// expected condition: callers fall back to Score.Flatten.
var ErrNoPartition = errors.New("score has no partitionable structure")

// ParseError reports that a file could not be turned into a Score.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EventKind classifies a score event.
type EventKind int

const (
	// EventNote is a single sounding pitch.
	EventNote EventKind = iota

	// EventChord is two or more pitches sounding together.
	EventChord

	// EventRest is silence.
	EventRest

	// EventOther is anything without pitch (percussion, markers, ...).
	EventOther
)

func (k EventKind) String() string {
	switch k {
	case EventNote:
		return "note"
	case EventChord:
		return "chord"
	case EventRest:
		return "rest"
	default:
		return "other"
	}
}

// Event is one entry of a chronological event stream.
type Event struct {
	// Offset is the start of the event in ticks from the beginning of the score.
	Offset int64

	// Kind classifies the event.
	Kind EventKind

	// Keys holds the MIDI keys sounding at Offset, in the order they were
	// encountered. Empty for rests and other events.
	Keys []uint8
}

// Part is the event stream of one instrument.
type Part struct {
	// Name is the instrument or track name, if any.
	Name string

	// Program is the General MIDI program number, or -1 when unknown.
	Program int

	// Channel is the zero-based MIDI channel the part plays on.
	Channel int

	// Events is the flattened, chronologically ordered stream of the part.
	Events []Event
}

// Pitched reports whether the part contains at least one note or chord.
func (p Part) Pitched() bool {
	for _, ev := range p.Events {
		if ev.Kind == EventNote || ev.Kind == EventChord {
			return true
		}
	}
	return false
}

// PartitionedScore is a score split into instrument parts.
type PartitionedScore interface {
	Parts() []Part
}

// Score is a parsed score.
type Score interface {
	// PartitionByInstrument splits the score by instrument. It returns an
	// error matching ErrNoPartition when the score has no such structure.
	PartitionByInstrument() (PartitionedScore, error)

	// Flatten returns every event of the score in chronological order.
	Flatten() []Event
}

// Parser reads a score from a file.
type Parser interface {
	Parse(ctx context.Context, path string) (Score, error)
}

// Parts is a PartitionedScore backed by a slice.
type Parts []Part

// Parts implements PartitionedScore.
func (p Parts) Parts() []Part {
	return p
}
