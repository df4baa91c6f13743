//go:build darwin
// +build darwin

package synthdarwin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/solfa/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI output issues.
var (
	ErrNoDestinations = errors.New("no MIDI destinations found")
	ErrSynthClosed    = errors.New("synthesizer is closed")
)

const (
	noteOnStatus  = 0x90
	noteOffStatus = 0x80
)

// Synth sounds tones through the first CoreMIDI destination on macOS.
type Synth struct {
	logger contracts.Logger
	client coremidi.Client
	port   coremidi.OutputPort

	mu     sync.Mutex
	dest   *coremidi.Destination
	next   contracts.ToneHandle
	keys   map[contracts.ToneHandle]uint8
	closed bool
}

// NewSynthesizer creates a CoreMIDI-backed synthesizer.
func NewSynthesizer(logger contracts.Logger) (contracts.Synthesizer, error) {
	client, err := coremidi.NewClient("Solfa")
	if err != nil {
		return nil, fmt.Errorf("creating CoreMIDI client: %w", err)
	}
	port, err := coremidi.NewOutputPort(client, "Solfa Out")
	if err != nil {
		return nil, fmt.Errorf("creating CoreMIDI output port: %w", err)
	}
	logger.Info("CoreMIDI synthesizer created")
	return &Synth{
		logger: logger,
		client: client,
		port:   port,
		keys:   make(map[contracts.ToneHandle]uint8),
	}, nil
}

// EnsureReady binds the first destination lazily. Having no destination is
// not-ready, not an error; the next gesture retries.
func (s *Synth) EnsureReady(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrSynthClosed
	}
	if s.dest != nil {
		return true, nil
	}

	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return false, fmt.Errorf("listing MIDI destinations: %w", err)
	}
	if len(destinations) == 0 {
		s.logger.Debug("no MIDI destinations yet; synthesizer not ready")
		return false, nil
	}
	s.dest = &destinations[0]
	s.logger.Info("MIDI destination connected",
		s.logger.Field().String("destination", s.dest.Name()))
	return true, nil
}

// AttackTone sends a note-on packet to the bound destination.
func (s *Synth) AttackTone(key uint8, velocity uint8) (contracts.ToneHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSynthClosed
	}
	if s.dest == nil {
		return 0, ErrNoDestinations
	}

	packet := coremidi.Packet{Data: []byte{noteOnStatus, key, velocity}}
	if err := packet.Send(&s.port, s.dest); err != nil {
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
	if s.closed || s.dest == nil {
		return nil
	}
	packet := coremidi.Packet{Data: []byte{noteOffStatus, key, 0}}
	if err := packet.Send(&s.port, s.dest); err != nil {
		return fmt.Errorf("sending note off: %w", err)
	}
	return nil
}

// Devices lists the available MIDI destinations.
func (s *Synth) Devices() ([]contracts.DeviceInfo, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI destinations: %w", err)
	}
	devices := make([]contracts.DeviceInfo, len(destinations))
	for i, dest := range destinations {
		entity := dest.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         dest.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// Close silences held tones and releases the destination.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.dest != nil {
		for _, key := range s.keys {
			packet := coremidi.Packet{Data: []byte{noteOffStatus, key, 0}}
			_ = packet.Send(&s.port, s.dest)
		}
		s.dest = nil
	}
	s.keys = nil
	return nil
}
