package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Token is a string encoding one musical event.
//
// Two kinds of tokens exist, both serialized as plain strings:
//   - Note tokens hold the pitch name of a single note, e.g. "C4" or "F#3"
//   - Chord tokens hold ascending, deduplicated pitch classes joined by '.',
//     e.g. "0.4.7" for a C major triad
//
// Rests and non-pitched events never produce a token.
type Token = string

// pitchNames maps a pitch class to its name. Sharps are used for the
// black keys, matching how MIDI note numbers are usually spelled.
var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchClass returns the position of a MIDI key within its octave (0-11).
//
// Example:
//
//	PitchClass(60) // 0 (C)
//	PitchClass(67) // 7 (G)
func PitchClass(key uint8) int {
	return int(key) % 12
}

// NoteToken returns the pitch name of a MIDI key in scientific pitch notation.
//
// Middle C (MIDI 60) is "C4". The lowest MIDI octave is written with a
// minus sign, so key 0 becomes "C-1".
//
// Example:
//
//	NoteToken(60) // "C4"
//	NoteToken(66) // "F#4"
//	NoteToken(21) // "A0"
func NoteToken(key uint8) Token {
	octave := int(key)/12 - 1
	return pitchNames[PitchClass(key)] + strconv.Itoa(octave)
}

// ChordToken normalizes a set of pitch classes into a chord token.
//
// The pitch classes are sorted ascending and duplicates are removed before
// joining with '.'. The input slice is not modified.
//
// Example:
//
//	ChordToken([]int{4, 0, 7, 4}) // "0.4.7"
//	ChordToken([]int{11, 2, 7})   // "2.7.11"
func ChordToken(pitchClasses []int) Token {
	classes := make([]int, len(pitchClasses))
	copy(classes, pitchClasses)
	sort.Ints(classes)

	var sb strings.Builder
	last := -1
	for _, pc := range classes {
		if pc == last {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(pc))
		last = pc
	}
	return sb.String()
}

// ChordTokenFromKeys builds a chord token from MIDI keys.
func ChordTokenFromKeys(keys []uint8) Token {
	classes := make([]int, len(keys))
	for i, k := range keys {
		classes[i] = PitchClass(k)
	}
	return ChordToken(classes)
}

// ParseChordToken splits a chord token back into its pitch classes.
//
// It returns an error if the token is not a valid chord token, i.e. any
// component is not an integer in 0-11 or the classes are not strictly
// ascending.
func ParseChordToken(tok Token) ([]int, error) {
	parts := strings.Split(tok, ".")
	classes := make([]int, 0, len(parts))
	for _, p := range parts {
		pc, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("chord token %q: %w", tok, err)
		}
		if pc < 0 || pc > 11 {
			return nil, fmt.Errorf("chord token %q: pitch class %d out of range", tok, pc)
		}
		if len(classes) > 0 && pc <= classes[len(classes)-1] {
			return nil, fmt.Errorf("chord token %q: pitch classes not strictly ascending", tok)
		}
		classes = append(classes, pc)
	}
	return classes, nil
}

// SpellToken renders a token with pitch names. Chord tokens become their
// pitch classes joined by '-', e.g. "0.4.7" is spelled "C-E-G". Note
// tokens, and chord tokens that do not parse, are returned unchanged.
func SpellToken(tok Token) string {
	if !IsChordToken(tok) {
		return tok
	}
	classes, err := ParseChordToken(tok)
	if err != nil {
		return tok
	}
	names := make([]string, len(classes))
	for i, pc := range classes {
		names[i] = pitchNames[pc]
	}
	return strings.Join(names, "-")
}

// IsChordToken reports whether tok is a chord token rather than a note name.
func IsChordToken(tok Token) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c >= '0' && c <= '9'
}
