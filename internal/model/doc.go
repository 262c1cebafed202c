// Package model defines the core data structures used throughout
// the notecorpus application.
//
// # Corpus Items
//
// CorpusItem identifies one input file and its canonical position:
//
//	item := model.CorpusItem{Path: "data/bach/bwv772.mid", Index: 0}
//
// # Tokens
//
// Token is one musical event rendered as a string. Single notes use
// scientific pitch notation, chords use sorted pitch classes:
//
//	model.NoteToken(60)               // "C4"
//	model.ChordToken([]int{4, 0, 7})  // "0.4.7"
//
// # Results
//
// Workers produce one ExtractionResult per item. The aggregated Corpus
// holds the successful token sequences keyed by path, and the failures
// in a separate, path-sorted list:
//
//	corpus := model.NewCorpus()
//	corpus.Mapping["a.mid"] = []model.Token{"C4", "0.4.7"}
//	corpus.Failures = append(corpus.Failures, model.Failure{Path: "b.mid", Reason: "corrupt"})
package model
