//go:build windows
// +build windows

package synthwinmm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/solfa/sdk/contracts"
	"golang.org/x/sys/windows"
)

// HMIDIOUT is a winmm MIDI output device handle.
type HMIDIOUT windows.Handle

// Constants for MIDI message types
const (
	noteOnStatus  = 0x90
	noteOffStatus = 0x80
)

// Struct representing MIDI output device capabilities
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// Error definitions for winmm output issues.
var (
	ErrNoDevices   = errors.New("no MIDI output devices found")
	ErrSynthClosed = errors.New("synthesizer is closed")
)

// Synth sounds tones through the first winmm MIDI output on Windows.
type Synth struct {
	logger contracts.Logger

	mu     sync.Mutex
	handle HMIDIOUT
	opened bool
	next   contracts.ToneHandle
	keys   map[contracts.ToneHandle]uint8
	closed bool
}

// NewSynthesizer creates a winmm-backed synthesizer for Windows.
func NewSynthesizer(logger contracts.Logger) (contracts.Synthesizer, error) {
	logger.Info("winmm synthesizer created for Windows")
	return &Synth{
		logger: logger,
		keys:   make(map[contracts.ToneHandle]uint8),
	}, nil
}

// EnsureReady opens the first output device lazily. No device means
// not-ready, not an error.
func (s *Synth) EnsureReady(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrSynthClosed
	}
	if s.opened {
		return true, nil
	}

	r0, _, _ := procMidiOutGetNumDevs.Call()
	if uint32(r0) == 0 {
		s.logger.Debug("no MIDI output devices yet; synthesizer not ready")
		return false, nil
	}

	r1, _, err := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&s.handle)),
		0, // first device
		0,
		0,
		0,
	)
	if r1 != 0 {
		return false, fmt.Errorf("failed to open MIDI output device: %v", err)
	}
	s.opened = true
	s.logger.Info("MIDI output device connected")
	return true, nil
}

func (s *Synth) sendShort(status, data1, data2 uint8) error {
	msg := uint32(status) | uint32(data1)<<8 | uint32(data2)<<16
	r1, _, err := procMidiOutShortMsg.Call(uintptr(s.handle), uintptr(msg))
	if r1 != 0 {
		return fmt.Errorf("midiOutShortMsg failed: %v", err)
	}
	return nil
}

// AttackTone sends a note-on message.
func (s *Synth) AttackTone(key uint8, velocity uint8) (contracts.ToneHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSynthClosed
	}
	if !s.opened {
		return 0, ErrNoDevices
	}
	if err := s.sendShort(noteOnStatus, key, velocity); err != nil {
		return 0, err
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
	if s.closed || !s.opened {
		return nil
	}
	return s.sendShort(noteOffStatus, key, 0)
}

// Devices lists the available MIDI output devices.
func (s *Synth) Devices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		return nil, ErrNoDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			s.logger.Warn(fmt.Sprintf("Failed to get information for MIDI output device %d", i))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// Close silences held tones and closes the device.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.opened {
		for _, key := range s.keys {
			_ = s.sendShort(noteOffStatus, key, 0)
		}
		r1, _, err := procMidiOutClose.Call(uintptr(s.handle))
		if r1 != 0 {
			return fmt.Errorf("failed to close MIDI output device: %v", err)
		}
		s.opened = false
		s.handle = 0
	}
	s.keys = nil
	return nil
}
