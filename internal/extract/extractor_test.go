package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/handiism/notecorpus/internal/model"
	"github.com/handiism/notecorpus/internal/score"
	"github.com/handiism/notecorpus/internal/score/scoretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partitioned() *scoretest.Score {
	return &scoretest.Score{
		Parts: []score.Part{
			{Name: "Left hand", Events: []score.Event{scoretest.Note(0, 36)}},
			{Name: "Right hand", Events: []score.Event{
				scoretest.Note(0, 60),
				scoretest.Rest(1),
				scoretest.Chord(2, 64, 60, 67, 64),
				{Offset: 3, Kind: score.EventOther},
				scoretest.Note(4, 66),
			}},
		},
		Flat: []score.Event{scoretest.Note(0, 48)},
	}
}

func TestTokens(t *testing.T) {
	toks := Tokens(partitioned().Parts[1].Events)
	assert.Equal(t, []model.Token{"C4", "0.4.7", "F#4"}, toks)
}

func TestTokens_SkipsEmptyKeys(t *testing.T) {
	toks := Tokens([]score.Event{
		{Kind: score.EventNote},
		{Kind: score.EventChord},
		scoretest.Note(0, 69),
	})
	assert.Equal(t, []model.Token{"A4"}, toks)
}

func TestExtract_SelectsPart(t *testing.T) {
	p := scoretest.NewParser().Set("a.mid", partitioned())
	ex := New(p, nil)

	res := ex.Extract(context.Background(), model.CorpusItem{Path: "a.mid", Index: 3})
	require.NoError(t, res.Err)
	assert.Equal(t, "a.mid", res.Item.Path)
	assert.Equal(t, 3, res.Item.Index)
	assert.False(t, res.Fallback)
	assert.Equal(t, []model.Token{"C4", "0.4.7", "F#4"}, res.Tokens)
}

func TestExtract_CustomSelector(t *testing.T) {
	p := scoretest.NewParser().Set("a.mid", partitioned())
	ex := New(p, score.NameSelector{Name: "left"})

	res := ex.Extract(context.Background(), model.CorpusItem{Path: "a.mid"})
	require.NoError(t, res.Err)
	assert.Equal(t, []model.Token{"C2"}, res.Tokens)
}

func TestExtract_FallbackWithoutPartitions(t *testing.T) {
	sc := &scoretest.Score{Flat: []score.Event{
		scoretest.Note(0, 60),
		scoretest.Chord(1, 67, 60, 64),
	}}
	p := scoretest.NewParser().Set("flat.mid", sc)

	res := New(p, nil).Extract(context.Background(), model.CorpusItem{Path: "flat.mid"})
	require.NoError(t, res.Err)
	assert.True(t, res.Fallback)
	assert.Equal(t, []model.Token{"C4", "0.4.7"}, res.Tokens)
}

func TestExtract_FallbackWhenSelectorFindsNothing(t *testing.T) {
	sc := partitioned()
	sc.Parts = sc.Parts[:1]
	p := scoretest.NewParser().Set("solo.mid", sc)

	res := New(p, nil).Extract(context.Background(), model.CorpusItem{Path: "solo.mid"})
	require.NoError(t, res.Err)
	assert.True(t, res.Fallback)
	assert.Equal(t, []model.Token{"C3"}, res.Tokens)
}

func TestExtract_OtherPartitionErrorIsFailure(t *testing.T) {
	boom := errors.New("track table damaged")
	sc := partitioned()
	sc.PartitionErr = boom
	p := scoretest.NewParser().Set("bad.mid", sc)

	res := New(p, nil).Extract(context.Background(), model.CorpusItem{Path: "bad.mid"})
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, boom)
	assert.False(t, res.Fallback)
	assert.Nil(t, res.Tokens)

	var pe *score.ParseError
	require.ErrorAs(t, res.Err, &pe)
	assert.Equal(t, "bad.mid", pe.Path)
}

func TestExtract_SelectorErrorIsFailure(t *testing.T) {
	boom := errors.New("selector bug")
	p := scoretest.NewParser().Set("a.mid", partitioned())
	sel := score.SelectorFunc(func([]score.Part) (score.Part, error) { return score.Part{}, boom })

	res := New(p, sel).Extract(context.Background(), model.CorpusItem{Path: "a.mid"})
	assert.ErrorIs(t, res.Err, boom)
}

func TestExtract_ParseFailure(t *testing.T) {
	p := scoretest.NewParser().Corrupt("corrupt.mid")

	res := New(p, nil).Extract(context.Background(), model.CorpusItem{Path: "corrupt.mid"})
	assert.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, scoretest.ErrCorrupt)
}

func TestExtract_PlainErrorIsWrapped(t *testing.T) {
	p := scoretest.NewParser().Fail("x.mid", errors.New("unsupported format"))

	res := New(p, nil).Extract(context.Background(), model.CorpusItem{Path: "x.mid"})
	var pe *score.ParseError
	require.ErrorAs(t, res.Err, &pe)
	assert.Equal(t, "x.mid", pe.Path)
}

func TestExtract_RecoversPanic(t *testing.T) {
	p := scoretest.NewParser().Panic("boom.mid")

	var res model.ExtractionResult
	require.NotPanics(t, func() {
		res = New(p, nil).Extract(context.Background(), model.CorpusItem{Path: "boom.mid"})
	})
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "parser panic")
	assert.Equal(t, "boom.mid", res.Item.Path)
}
