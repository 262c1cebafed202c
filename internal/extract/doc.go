// Package extract turns one corpus item into an ordered token sequence.
//
// An Extractor asks a score.Parser for the score, selects a part with the
// configured score.PartSelector and walks its events in order:
//
//	ex := extract.New(midi.NewParser(), score.DefaultSelector())
//	result := ex.Extract(ctx, model.CorpusItem{Path: "a.mid"})
//	if result.Failed() {
//	    log.Printf("skip %s: %v", result.Item.Path, result.Err)
//	}
//
// Only score.ErrNoPartition triggers the fallback to the whole score's
// event stream. Every other parser error, and any panic raised by the
// parser, ends up in ExtractionResult.Err; Extract never panics and never
// returns an error of its own.
package extract
