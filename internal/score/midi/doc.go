// Package midi implements score.Parser for Standard MIDI Files using
// gitlab.com/gomidi/midi/v2.
//
// Notes starting on the same tick within a part are merged into a single
// event: one distinct key makes a note event, several make a chord event.
// Channel 10 is General MIDI percussion and produces non-pitched events
// only. Partitioning groups notes by program (instrument) across all
// tracks; a file that never selects a program has no instrument structure
// and reports score.ErrNoPartition.
package midi
