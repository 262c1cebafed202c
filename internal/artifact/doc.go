// Package artifact persists an aggregated Corpus as a single versioned
// binary file and reads it back.
//
// # Format
//
//	magic   "NTCP"
//	version uint16, little endian
//	flags   uint16, little endian (bit 0: body is zstd-compressed)
//	body    protobuf wire format:
//	          1: run id (string)
//	          2: creation time, unix seconds (varint)
//	          3: entry   { 1: path, 2: token (repeated) }
//	          4: failure { 1: path, 2: reason }
//
// Entries and failures are written in path order, so two artifacts of the
// same Corpus differ only in run id and creation time.
//
// # Atomic Writes
//
// Write encodes the whole artifact in memory, writes it to a temporary file
// next to the destination, syncs it and renames it over the destination.
// Readers therefore see either the previous artifact or the new one, never
// a partial file:
//
//	hdr, err := artifact.Write(ctx, "data/notes.ntcp", corpus)
//	if err != nil {
//	    var pe *artifact.PersistenceError
//	    errors.As(err, &pe) // the previous file is untouched
//	}
//
//	a, err := artifact.Read("data/notes.ntcp")
//	fmt.Println(a.Header.RunID, len(a.Corpus.Mapping))
package artifact
