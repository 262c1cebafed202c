// Package corpus discovers the input files of a run.
//
// Enumerate expands a glob pattern into CorpusItems with a deterministic
// order. Patterns support the doublestar syntax, including "**" for
// recursive matches and "{a,b}" alternatives:
//
//	items, err := corpus.Enumerate("data/classical/**/*.mid")
//	if err != nil {
//	    var ee *corpus.EnumerationError
//	    errors.As(err, &ee) // bad pattern or empty corpus
//	}
//
// Paths are normalized to '/' separators and sorted lexicographically
// before indexes are assigned, so the result never depends on the order
// in which the filesystem lists directory entries.
package corpus
