// Package synthrtmidi sounds tones through the first available MIDI output
// using the cross-platform rtmidi driver.
package synthrtmidi

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/solfa/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Error definitions for rtmidi backend issues.
var (
	ErrNoOutputs   = errors.New("no MIDI output ports found")
	ErrSynthClosed = errors.New("synthesizer is closed")
)

// Synth drives a MIDI output port. Readiness is lazy: the port is opened on
// the first EnsureReady call, so constructing the backend never blocks on
// hardware.
type Synth struct {
	logger contracts.Logger

	mu     sync.Mutex
	drv    *rtmididrv.Driver
	out    drivers.Out
	next   contracts.ToneHandle
	keys   map[contracts.ToneHandle]uint8
	closed bool
}

// NewSynthesizer creates an rtmidi-backed synthesizer.
func NewSynthesizer(logger contracts.Logger) (contracts.Synthesizer, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	logger.Info("rtmidi synthesizer created")
	return &Synth{
		logger: logger,
		drv:    drv,
		keys:   make(map[contracts.ToneHandle]uint8),
	}, nil
}

// EnsureReady opens the first output port if none is open yet. A missing
// port is reported as not-ready rather than an error so callers can retry on
// the next gesture.
func (s *Synth) EnsureReady(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrSynthClosed
	}
	if s.out != nil {
		return true, nil
	}

	outs, err := s.drv.Outs()
	if err != nil {
		return false, fmt.Errorf("listing MIDI outputs: %w", err)
	}
	if len(outs) == 0 {
		s.logger.Debug("no MIDI outputs yet; synthesizer not ready")
		return false, nil
	}

	out := outs[0]
	if err := out.Open(); err != nil {
		return false, fmt.Errorf("opening MIDI output %q: %w", out.String(), err)
	}
	s.out = out
	s.logger.Info("MIDI output connected",
		s.logger.Field().String("port", out.String()))
	return true, nil
}

// AttackTone sends a note-on and remembers the key under a fresh handle.
func (s *Synth) AttackTone(key uint8, velocity uint8) (contracts.ToneHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSynthClosed
	}
	if s.out == nil {
		return 0, ErrNoOutputs
	}
	if err := s.out.Send(midi.NoteOn(0, key, velocity)); err != nil {
		return 0, fmt.Errorf("sending note on: %w", err)
	}
	s.next++
	s.keys[s.next] = key
	return s.next, nil
}

// ReleaseTone sends the matching note-off. Unknown handles are a no-op.
func (s *Synth) ReleaseTone(h contracts.ToneHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[h]
	if !ok {
		return nil
	}
	delete(s.keys, h)
	if s.closed || s.out == nil {
		return nil
	}
	if err := s.out.Send(midi.NoteOff(0, key)); err != nil {
		return fmt.Errorf("sending note off: %w", err)
	}
	return nil
}

// Devices lists the available MIDI output ports.
func (s *Synth) Devices() ([]contracts.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSynthClosed
	}
	outs, err := s.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI outputs: %w", err)
	}
	devices := make([]contracts.DeviceInfo, len(outs))
	for i, out := range outs {
		devices[i] = contracts.DeviceInfo{
			Name:       out.String(),
			EntityName: out.String(),
		}
	}
	return devices, nil
}

// Close silences held tones and shuts the driver down.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.out != nil {
		for _, key := range s.keys {
			_ = s.out.Send(midi.NoteOff(0, key))
		}
		_ = s.out.Close()
		s.out = nil
	}
	s.keys = nil
	return s.drv.Close()
}
