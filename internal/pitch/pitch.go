// Package pitch resolves solfège degrees against a key and mode into concrete
// pitch names and MIDI key numbers.
package pitch

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/solfa/sdk/contracts"
)

// Error definitions for pitch resolution issues.
var (
	ErrInvalidDegree   = errors.New("solfège degree out of range")
	ErrInvalidOctave   = errors.New("octave out of instrument range")
	ErrPitchOutOfRange = errors.New("pitch above the MIDI key range")
)

// Semitone offsets of the seven degrees relative to the tonic.
var (
	majorOffsets = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorOffsets = [7]int{0, 2, 3, 5, 7, 8, 10}
)

var pitchClassNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// Resolved is a concrete pitch produced from a solfège degree.
type Resolved struct {
	Name    string // e.g. "G4"
	MIDIKey uint8
}

// Resolve maps a solfège degree and octave onto a pitch in the given key and
// mode. Octaves above MaxOctave can arise when the degree crosses into the
// next octave relative to the tonic; the caller-supplied octave is validated
// against the instrument range and the resolved key against the MIDI range.
func Resolve(key contracts.Key, mode contracts.Mode, degree contracts.SolfegeDegree, octave int) (Resolved, error) {
	if !degree.Valid() {
		return Resolved{}, fmt.Errorf("%w: %d", ErrInvalidDegree, int(degree))
	}
	if octave < contracts.MinOctave || octave > contracts.MaxOctave {
		return Resolved{}, fmt.Errorf("%w: %d", ErrInvalidOctave, octave)
	}

	offsets := majorOffsets
	if mode == contracts.MinorMode {
		offsets = minorOffsets
	}

	semitone := int(key) + offsets[degree]
	pitchOctave := octave + semitone/12
	pitchClass := semitone % 12

	// MIDI octave numbering places C4 at key 60.
	midiKey := (pitchOctave+1)*12 + pitchClass

	// High tonics at MaxOctave can push past the 7-bit MIDI data byte; a key
	// above 127 would be read as a status byte by the synth backends.
	if midiKey > 127 {
		return Resolved{}, fmt.Errorf("%w: %s%d (MIDI %d)", ErrPitchOutOfRange, pitchClassNames[pitchClass], pitchOctave, midiKey)
	}

	return Resolved{
		Name:    fmt.Sprintf("%s%d", pitchClassNames[pitchClass], pitchOctave),
		MIDIKey: uint8(midiKey),
	}, nil
}
