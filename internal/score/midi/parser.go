package midi

import (
	"context"
	"errors"
	"sort"

	"github.com/handiism/notecorpus/internal/score"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// percussionChannel is General MIDI channel 10, zero-based.
const percussionChannel = 9

// unknownProgram marks notes played before any program change.
const unknownProgram = -1

var errNoTracks = errors.New("file contains no tracks")

// Parser reads Standard MIDI Files.
//
// Parser is stateless and safe for concurrent use; every call to Parse
// reads the file independently.
//
// Example:
//
//	p := midi.NewParser()
//	sc, err := p.Parse(ctx, "data/chopin/op28-4.mid")
//	if err != nil {
//	    return err
//	}
//	events := sc.Flatten()
type Parser struct{}

// NewParser creates a new MIDI Parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ score.Parser = (*Parser)(nil)

// note is one note start with its absolute position.
type note struct {
	tick    int64
	channel uint8
	key     uint8
	program int
	track   int
}

// Parse reads the file at path.
//
// Any read or decoding failure is returned as a *score.ParseError.
func (p *Parser) Parse(ctx context.Context, path string) (score.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := smf.ReadFile(path)
	if err != nil {
		return nil, &score.ParseError{Path: path, Err: err}
	}
	if len(file.Tracks) == 0 {
		return nil, &score.ParseError{Path: path, Err: errNoTracks}
	}

	return build(file), nil
}

// rawEvent is a program change or note start with its absolute position.
type rawEvent struct {
	tick    int64
	track   int
	channel uint8
	key     uint8
	program uint8
	isNote  bool
}

// build collects note starts from every track into a Score.
//
// Channel programs are shared by all tracks, so events are merged into one
// timeline before programs are resolved.
func build(file *smf.SMF) *Score {
	sc := &Score{trackNames: make(map[int]string)}

	var raw []rawEvent
	for ti, track := range file.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)

			var name string
			if ev.Message.GetMetaTrackName(&name) {
				if _, ok := sc.trackNames[ti]; !ok {
					sc.trackNames[ti] = name
				}
				continue
			}

			msg := gomidi.Message(ev.Message)
			var ch, key, vel, prog uint8
			switch {
			case msg.GetProgramChange(&ch, &prog):
				raw = append(raw, rawEvent{tick: abs, track: ti, channel: ch, program: prog})
			case msg.GetNoteStart(&ch, &key, &vel):
				raw = append(raw, rawEvent{tick: abs, track: ti, channel: ch, key: key, isNote: true})
			}
		}
	}

	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].tick < raw[j].tick
	})

	var programs [16]int
	for i := range programs {
		programs[i] = unknownProgram
	}
	for _, ev := range raw {
		if !ev.isNote {
			programs[ev.channel] = int(ev.program)
			sc.instruments = true
			continue
		}
		sc.notes = append(sc.notes, note{
			tick:    ev.tick,
			channel: ev.channel,
			key:     ev.key,
			program: programs[ev.channel],
			track:   ev.track,
		})
	}

	return sc
}

// Score is a parsed Standard MIDI File.
type Score struct {
	notes       []note
	trackNames  map[int]string
	instruments bool
}

var _ score.Score = (*Score)(nil)

// PartitionByInstrument groups notes by General MIDI program.
//
// Parts are ordered by their first sounding note. Percussion forms its own
// part made only of non-pitched events. A file without any program change
// carries no instrument information and yields score.ErrNoPartition.
func (s *Score) PartitionByInstrument() (score.PartitionedScore, error) {
	if !s.instruments {
		return nil, score.ErrNoPartition
	}

	type partKey struct {
		percussion bool
		program    int
	}

	var order []partKey
	groups := make(map[partKey][]note)
	for _, n := range s.notes {
		k := partKey{percussion: n.channel == percussionChannel, program: n.program}
		if k.percussion {
			k.program = unknownProgram
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], n)
	}

	parts := make(score.Parts, 0, len(order))
	for _, k := range order {
		notes := groups[k]
		parts = append(parts, score.Part{
			Name:    s.trackNames[notes[0].track],
			Program: k.program,
			Channel: int(notes[0].channel),
			Events:  groupEvents(notes),
		})
	}
	return parts, nil
}

// Flatten returns all events of the score in chronological order. Tracks
// and channels are merged, so notes starting on the same tick anywhere in
// the file form one chord.
func (s *Score) Flatten() []score.Event {
	return groupEvents(s.notes)
}

// groupEvents merges notes that start on the same tick into one event.
// Percussion notes become non-pitched events. The notes must be sorted.
func groupEvents(notes []note) []score.Event {
	var events []score.Event
	for i := 0; i < len(notes); {
		j := i
		for j < len(notes) && notes[j].tick == notes[i].tick {
			j++
		}

		var keys []uint8
		seen := make(map[uint8]bool)
		percussion := false
		for _, n := range notes[i:j] {
			if n.channel == percussionChannel {
				percussion = true
				continue
			}
			if !seen[n.key] {
				seen[n.key] = true
				keys = append(keys, n.key)
			}
		}

		switch {
		case len(keys) == 1:
			events = append(events, score.Event{Offset: notes[i].tick, Kind: score.EventNote, Keys: keys})
		case len(keys) > 1:
			events = append(events, score.Event{Offset: notes[i].tick, Kind: score.EventChord, Keys: keys})
		case percussion:
			events = append(events, score.Event{Offset: notes[i].tick, Kind: score.EventOther})
		}
		i = j
	}
	return events
}
