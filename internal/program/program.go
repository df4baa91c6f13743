// Package program holds the ordered beat collection the transport plays back.
package program

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/leandrodaf/solfa/sdk/contracts"
)

// Error definitions for program editing issues.
var (
	ErrStepOutOfRange = errors.New("beat step outside program")
	ErrInvalidBeat    = errors.New("invalid beat")
	ErrLocked         = errors.New("program is locked during playback")
)

// Program is an ordered collection of beats over a fixed number of steps.
// It is locked while the transport is playing it; edits are only accepted
// while stopped.
type Program struct {
	mu     sync.Mutex
	steps  int
	beats  []contracts.Beat
	locked bool
}

// New creates an empty program with the given loop length.
func New(steps int) *Program {
	if steps < 1 {
		steps = 1
	}
	return &Program{steps: steps}
}

// Steps returns the loop length of the program.
func (p *Program) Steps() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.steps
}

// Add inserts a beat. Beats referencing a step outside the program, an
// invalid degree or octave, or a non-positive duration are rejected at
// insertion so playback never sees them.
func (p *Program) Add(b contracts.Beat) error {
	if !b.Solfege.Valid() {
		return fmt.Errorf("%w: degree %d", ErrInvalidBeat, int(b.Solfege))
	}
	if b.Octave < contracts.MinOctave || b.Octave > contracts.MaxOctave {
		return fmt.Errorf("%w: octave %d", ErrInvalidBeat, b.Octave)
	}
	if b.DurationSteps < 1 {
		return fmt.Errorf("%w: duration %d", ErrInvalidBeat, b.DurationSteps)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if b.Step < 0 || b.Step >= p.steps {
		return fmt.Errorf("%w: step %d of %d", ErrStepOutOfRange, b.Step, p.steps)
	}
	if p.locked {
		return ErrLocked
	}

	p.beats = append(p.beats, b)
	sort.SliceStable(p.beats, func(i, j int) bool {
		return p.beats[i].Step < p.beats[j].Step
	})
	return nil
}

// Remove deletes the first beat matching step, degree and octave. Removing a
// beat that is not present is a no-op.
func (p *Program) Remove(step int, degree contracts.SolfegeDegree, octave int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.locked {
		return ErrLocked
	}
	for i, b := range p.beats {
		if b.Step == step && b.Solfege == degree && b.Octave == octave {
			p.beats = append(p.beats[:i], p.beats[i+1:]...)
			return nil
		}
	}
	return nil
}

// Clear removes every beat.
func (p *Program) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.locked {
		return ErrLocked
	}
	p.beats = nil
	return nil
}

// BeatsAt returns the beats scheduled at the given step.
func (p *Program) BeatsAt(step int) []contracts.Beat {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []contracts.Beat
	for _, b := range p.beats {
		if b.Step == step {
			out = append(out, b)
		}
	}
	return out
}

// All returns a snapshot of every beat in step order.
func (p *Program) All() []contracts.Beat {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]contracts.Beat(nil), p.beats...)
}

// Len reports the number of beats in the program.
func (p *Program) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.beats)
}

// Lock freezes the program for playback. Edits fail with ErrLocked until
// Unlock. Called by the transport owner, not by program users.
func (p *Program) Lock() {
	p.mu.Lock()
	p.locked = true
	p.mu.Unlock()
}

// Unlock reopens the program for editing.
func (p *Program) Unlock() {
	p.mu.Lock()
	p.locked = false
	p.mu.Unlock()
}
