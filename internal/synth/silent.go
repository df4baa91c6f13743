// Package synth provides synthesizer collaborators for the note engine.
package synth

import (
	"context"
	"sync"

	"github.com/leandrodaf/solfa/sdk/contracts"
)

// Silent is a synthesizer that sounds nothing. It is the default backend:
// always ready, every tone accepted, every release a no-op. Tests and
// headless callers use it to exercise the full note lifecycle without audio
// hardware.
type Silent struct {
	mu       sync.Mutex
	next     contracts.ToneHandle
	sounding map[contracts.ToneHandle]uint8
	closed   bool
}

// NewSilent creates a silent synthesizer.
func NewSilent() *Silent {
	return &Silent{sounding: make(map[contracts.ToneHandle]uint8)}
}

// EnsureReady always reports ready unless the backend was closed.
func (s *Silent) EnsureReady(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed, nil
}

// AttackTone records the tone and returns a fresh handle.
func (s *Silent) AttackTone(key uint8, _ uint8) (contracts.ToneHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.sounding[s.next] = key
	return s.next, nil
}

// ReleaseTone forgets the tone. Unknown handles are a no-op.
func (s *Silent) ReleaseTone(h contracts.ToneHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sounding, h)
	return nil
}

// Devices reports no devices; there is nothing to address.
func (s *Silent) Devices() ([]contracts.DeviceInfo, error) {
	return nil, nil
}

// Close marks the backend unavailable.
func (s *Silent) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Sounding reports how many tones are currently held. Intended for tests and
// diagnostics.
func (s *Silent) Sounding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sounding)
}
