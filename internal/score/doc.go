// Package score defines the capability notecorpus needs from a score
// parser, independent of the file format being read.
//
// A Parser turns one file into a Score. A Score can be partitioned by
// instrument, yielding one Part per instrument, or flattened into a single
// chronological event stream:
//
//	sc, err := parser.Parse(ctx, "bach/bwv772.mid")
//	if err != nil {
//	    // corrupt or unsupported file
//	}
//	parts, err := sc.PartitionByInstrument()
//	if errors.Is(err, score.ErrNoPartition) {
//	    events := sc.Flatten()
//	}
//
// # Part Selection
//
// Which part supplies the tokens is a policy, expressed as a PartSelector.
// IndexSelector{Index: 1} picks the second instrument part, the historical
// default; NameSelector, ProgramSelector and FirstPitchedSelector offer
// alternatives. A selector that finds no suitable part returns
// ErrNoPartition so callers fall back to the flattened score.
package score
