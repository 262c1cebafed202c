// Package aggregate collects extraction results into a Corpus.
//
// Results arrive in completion order, which is unrelated to dispatch
// order. The Aggregator correlates them by path only:
//
//	agg := aggregate.New(len(items))
//	// from any number of goroutines:
//	agg.Add(result)
//	// once every item is accounted for:
//	corpus, err := agg.Result()
//
// # Progress
//
// Progress is a lock-free completed counter with a fixed total. A
// presentation layer polls it; it has no influence on the run:
//
//	completed, total := agg.Progress()
package aggregate
