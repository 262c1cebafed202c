package score

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParts() []Part {
	return []Part{
		{Name: "Conductor", Program: -1, Events: []Event{{Kind: EventOther}}},
		{Name: "Piano RH", Program: 0, Events: []Event{{Kind: EventNote, Keys: []uint8{60}}}},
		{Name: "Violin", Program: 40, Events: []Event{{Kind: EventChord, Keys: []uint8{64, 67}}}},
	}
}

func TestIndexSelector(t *testing.T) {
	parts := testParts()

	p, err := DefaultSelector().Select(parts)
	require.NoError(t, err)
	assert.Equal(t, "Piano RH", p.Name)

	_, err = IndexSelector{Index: 3}.Select(parts)
	assert.ErrorIs(t, err, ErrNoPartition)

	_, err = IndexSelector{Index: -1}.Select(parts)
	assert.ErrorIs(t, err, ErrNoPartition)

	_, err = IndexSelector{Index: 1}.Select(parts[:1])
	assert.ErrorIs(t, err, ErrNoPartition)
}

func TestNameSelector(t *testing.T) {
	p, err := NameSelector{Name: "violin"}.Select(testParts())
	require.NoError(t, err)
	assert.Equal(t, 40, p.Program)

	_, err = NameSelector{Name: "cello"}.Select(testParts())
	assert.ErrorIs(t, err, ErrNoPartition)
}

func TestProgramSelector(t *testing.T) {
	p, err := ProgramSelector{Program: 0}.Select(testParts())
	require.NoError(t, err)
	assert.Equal(t, "Piano RH", p.Name)

	_, err = ProgramSelector{Program: 73}.Select(testParts())
	assert.ErrorIs(t, err, ErrNoPartition)
}

func TestFirstPitchedSelector(t *testing.T) {
	p, err := FirstPitchedSelector{}.Select(testParts())
	require.NoError(t, err)
	assert.Equal(t, "Piano RH", p.Name)

	_, err = FirstPitchedSelector{}.Select(testParts()[:1])
	assert.ErrorIs(t, err, ErrNoPartition)
}

func TestSelectorFunc(t *testing.T) {
	boom := errors.New("boom")
	sel := SelectorFunc(func([]Part) (Part, error) { return Part{}, boom })

	_, err := sel.Select(testParts())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoPartition)
}

func TestParseError(t *testing.T) {
	inner := errors.New("bad header")
	err := error(&ParseError{Path: "x.mid", Err: inner})

	assert.Equal(t, "parse x.mid: bad header", err.Error())
	assert.ErrorIs(t, err, inner)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "x.mid", pe.Path)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "note", EventNote.String())
	assert.Equal(t, "chord", EventChord.String())
	assert.Equal(t, "rest", EventRest.String())
	assert.Equal(t, "other", EventOther.String())
}
