package midi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/notecorpus/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func writeSMF(t *testing.T, path string, tracks ...smf.Track) {
	t.Helper()
	s := smf.New()
	for _, tr := range tracks {
		require.NoError(t, s.Add(tr))
	}
	require.NoError(t, s.WriteFile(path))
}

// flatTrack plays C4, then a C major triad with a doubled E, then a hi-hat.
func flatTrack() smf.Track {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(96, gomidi.NoteOff(0, 60))
	tr.Add(0, gomidi.NoteOn(0, 64, 100))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(0, gomidi.NoteOn(0, 67, 100))
	tr.Add(0, gomidi.NoteOn(0, 64, 90))
	tr.Add(96, gomidi.NoteOff(0, 60))
	tr.Add(0, gomidi.NoteOff(0, 64))
	tr.Add(0, gomidi.NoteOff(0, 67))
	tr.Add(0, gomidi.NoteOn(percussionChannel, 42, 100))
	tr.Add(48, gomidi.NoteOff(percussionChannel, 42))
	tr.Close(0)
	return tr
}

func instrumentTrack(name string, channel, program uint8, keys ...uint8) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	tr.Add(0, gomidi.ProgramChange(channel, program))
	for _, k := range keys {
		tr.Add(0, gomidi.NoteOn(channel, k, 100))
		tr.Add(96, gomidi.NoteOff(channel, k))
	}
	tr.Close(0)
	return tr
}

func TestParser_FlatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.mid")
	writeSMF(t, path, flatTrack())

	sc, err := NewParser().Parse(context.Background(), path)
	require.NoError(t, err)

	_, err = sc.PartitionByInstrument()
	assert.ErrorIs(t, err, score.ErrNoPartition)

	events := sc.Flatten()
	require.Len(t, events, 3)

	assert.Equal(t, score.EventNote, events[0].Kind)
	assert.Equal(t, []uint8{60}, events[0].Keys)

	assert.Equal(t, score.EventChord, events[1].Kind)
	assert.ElementsMatch(t, []uint8{60, 64, 67}, events[1].Keys)
	assert.Greater(t, events[1].Offset, events[0].Offset)

	assert.Equal(t, score.EventOther, events[2].Kind)
	assert.Empty(t, events[2].Keys)
}

func TestParser_PartitionByInstrument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duet.mid")
	writeSMF(t, path,
		instrumentTrack("Piano", 0, 0, 60, 62, 64),
		instrumentTrack("Violin", 1, 40, 72, 74),
	)

	sc, err := NewParser().Parse(context.Background(), path)
	require.NoError(t, err)

	ps, err := sc.PartitionByInstrument()
	require.NoError(t, err)

	parts := ps.Parts()
	require.Len(t, parts, 2)
	assert.Equal(t, "Piano", parts[0].Name)
	assert.Equal(t, 0, parts[0].Program)
	assert.Len(t, parts[0].Events, 3)

	assert.Equal(t, "Violin", parts[1].Name)
	assert.Equal(t, 40, parts[1].Program)
	assert.Equal(t, 1, parts[1].Channel)
	require.Len(t, parts[1].Events, 2)
	assert.Equal(t, []uint8{72}, parts[1].Events[0].Keys)

	// Both instruments start together, so the flattened stream opens with a chord.
	flat := sc.Flatten()
	require.NotEmpty(t, flat)
	assert.Equal(t, score.EventChord, flat[0].Kind)
}

func TestParser_FlattenMergesTracks(t *testing.T) {
	// Two tracks without program changes, sounding C4 and E4 together, then G4 alone.
	var lower, upper smf.Track
	lower.Add(0, gomidi.NoteOn(0, 60, 100))
	lower.Add(96, gomidi.NoteOff(0, 60))
	lower.Close(0)
	upper.Add(0, gomidi.NoteOn(1, 64, 100))
	upper.Add(96, gomidi.NoteOff(1, 64))
	upper.Add(0, gomidi.NoteOn(1, 67, 100))
	upper.Add(96, gomidi.NoteOff(1, 67))
	upper.Close(0)

	path := filepath.Join(t.TempDir(), "two-tracks.mid")
	writeSMF(t, path, lower, upper)

	sc, err := NewParser().Parse(context.Background(), path)
	require.NoError(t, err)

	_, err = sc.PartitionByInstrument()
	require.ErrorIs(t, err, score.ErrNoPartition)

	events := sc.Flatten()
	require.Len(t, events, 2)
	assert.Equal(t, score.EventChord, events[0].Kind)
	assert.ElementsMatch(t, []uint8{60, 64}, events[0].Keys)
	assert.Equal(t, score.EventNote, events[1].Kind)
	assert.Equal(t, []uint8{67}, events[1].Keys)
}

func TestParser_SingleInstrumentHasOnePart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solo.mid")
	writeSMF(t, path, instrumentTrack("Flute", 0, 73, 72, 74, 76))

	sc, err := NewParser().Parse(context.Background(), path)
	require.NoError(t, err)

	ps, err := sc.PartitionByInstrument()
	require.NoError(t, err)
	require.Len(t, ps.Parts(), 1)

	_, err = score.DefaultSelector().Select(ps.Parts())
	assert.ErrorIs(t, err, score.ErrNoPartition)
}

func TestParser_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.mid")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a midi file"), 0o644))

	_, err := NewParser().Parse(context.Background(), path)
	require.Error(t, err)

	var pe *score.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Path)
	assert.NotErrorIs(t, err, score.ErrNoPartition)
}

func TestParser_MissingFile(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), filepath.Join(t.TempDir(), "missing.mid"))
	var pe *score.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParser_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().Parse(ctx, "whatever.mid")
	assert.ErrorIs(t, err, context.Canceled)
}
