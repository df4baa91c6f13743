package contracts

import (
	"strings"
	"time"
)

// SolfegeDegree identifies a scale degree by its solfège name, 0 (Do) to 6 (Ti).
type SolfegeDegree int

const (
	Do SolfegeDegree = iota
	Re
	Mi
	Fa
	Sol
	La
	Ti
)

var solfegeNames = [...]string{"Do", "Re", "Mi", "Fa", "Sol", "La", "Ti"}

// String returns the solfège name of the degree, or "?" if out of range.
func (d SolfegeDegree) String() string {
	if !d.Valid() {
		return "?"
	}
	return solfegeNames[d]
}

// Valid reports whether the degree is within Do..Ti.
func (d SolfegeDegree) Valid() bool {
	return d >= Do && d <= Ti
}

// ParseSolfege maps a solfège name (case-insensitive) back to its degree.
func ParseSolfege(name string) (SolfegeDegree, bool) {
	for i, n := range solfegeNames {
		if strings.EqualFold(n, name) {
			return SolfegeDegree(i), true
		}
	}
	return 0, false
}

// Key is the tonic the solfège degrees are resolved against.
type Key int

const (
	KeyC Key = iota
	KeyDb
	KeyD
	KeyEb
	KeyE
	KeyF
	KeyGb
	KeyG
	KeyAb
	KeyA
	KeyBb
	KeyB
)

var keyNames = [...]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// ParseKey maps a pitch-class name (case-insensitive) back to its key.
func ParseKey(name string) (Key, bool) {
	for i, n := range keyNames {
		if strings.EqualFold(n, name) {
			return Key(i), true
		}
	}
	return 0, false
}

// String returns the pitch-class name of the key, or "?" if out of range.
func (k Key) String() string {
	if k < KeyC || k > KeyB {
		return "?"
	}
	return keyNames[k]
}

// Mode selects the scale the degrees map onto.
type Mode int

const (
	MajorMode Mode = iota
	MinorMode
)

// Instrument-valid octave range.
const (
	MinOctave = 1
	MaxOctave = 8
)

// NoteRecord describes a single sounding note. A record is created at attack
// time and removed at release; NoteID is never reused while the note sounds.
type NoteRecord struct {
	NoteID    string        // Opaque unique identifier allocated at attack.
	Solfege   SolfegeDegree // Scale degree, Do..Ti.
	Octave    int           // Octave within MinOctave..MaxOctave.
	NoteName  string        // Resolved pitch name, e.g. "C4" (key/mode dependent).
	MIDIKey   uint8         // Resolved MIDI key number (0-127).
	StartedAt time.Time     // Time of attack.
}

// NoteEventKind discriminates the variants of NoteEvent.
type NoteEventKind int

const (
	// NoteAttack indicates a note began sounding.
	NoteAttack NoteEventKind = iota
	// NoteRelease indicates a note stopped sounding.
	NoteRelease
)

// NoteEvent is published on the note event bus. Every event carries the note
// identity and the last known record snapshot, regardless of kind, so
// subscribers never have to guess at optional fields.
type NoteEvent struct {
	Kind   NoteEventKind
	NoteID string
	Record NoteRecord
}

// Beat is a note event bound to a sequencer step.
type Beat struct {
	Step          int           // 0-based step index within the program.
	Solfege       SolfegeDegree // Scale degree to attack.
	Octave        int           // Octave to attack.
	DurationSteps int           // How many steps the note sounds; minimum 1.
}
