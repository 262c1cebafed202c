package score

import (
	"fmt"
	"strings"
)

// PartSelector chooses the part whose events are tokenized.
//
// Implementations return an error matching ErrNoPartition when none of the
// parts qualifies. Any other error is treated as a parse failure.
type PartSelector interface {
	Select(parts []Part) (Part, error)
}

// SelectorFunc adapts a function to the PartSelector interface.
type SelectorFunc func(parts []Part) (Part, error)

// Select implements PartSelector.
func (f SelectorFunc) Select(parts []Part) (Part, error) {
	return f(parts)
}

// IndexSelector picks the part at a fixed position.
//
// The historical default is Index 1, the second instrument part. That
// choice assumes a track layout where the first part is a conductor or
// accompaniment track, which does not hold for every corpus.
type IndexSelector struct {
	Index int
}

// Select implements PartSelector.
func (s IndexSelector) Select(parts []Part) (Part, error) {
	if s.Index < 0 || s.Index >= len(parts) {
		return Part{}, fmt.Errorf("part index %d of %d parts: %w", s.Index, len(parts), ErrNoPartition)
	}
	return parts[s.Index], nil
}

// NameSelector picks the first part whose name contains Name,
// case-insensitively.
type NameSelector struct {
	Name string
}

// Select implements PartSelector.
func (s NameSelector) Select(parts []Part) (Part, error) {
	needle := strings.ToLower(s.Name)
	for _, p := range parts {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return p, nil
		}
	}
	return Part{}, fmt.Errorf("no part named %q: %w", s.Name, ErrNoPartition)
}

// ProgramSelector picks the first part played with a General MIDI program.
type ProgramSelector struct {
	Program int
}

// Select implements PartSelector.
func (s ProgramSelector) Select(parts []Part) (Part, error) {
	for _, p := range parts {
		if p.Program == s.Program {
			return p, nil
		}
	}
	return Part{}, fmt.Errorf("no part with program %d: %w", s.Program, ErrNoPartition)
}

// FirstPitchedSelector picks the first part that contains notes or chords.
type FirstPitchedSelector struct{}

// Select implements PartSelector.
func (FirstPitchedSelector) Select(parts []Part) (Part, error) {
	for _, p := range parts {
		if p.Pitched() {
			return p, nil
		}
	}
	return Part{}, fmt.Errorf("no pitched part: %w", ErrNoPartition)
}

// DefaultSelector returns the historical selection policy.
func DefaultSelector() PartSelector {
	return IndexSelector{Index: 1}
}
