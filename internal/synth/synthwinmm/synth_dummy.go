//go:build !windows
// +build !windows

package synthwinmm

import (
	"context"
	"fmt"

	"github.com/leandrodaf/solfa/sdk/contracts"
)

type dummySynth struct {
	logger contracts.Logger
}

// NewSynthesizer initializes a dummy synthesizer for non-Windows systems.
func NewSynthesizer(logger contracts.Logger) (contracts.Synthesizer, error) {
	logger.Info("Using dummy winmm synthesizer for non-Windows system")
	return &dummySynth{logger: logger}, nil
}

// EnsureReady reports not-ready; winmm is unavailable on this platform.
func (s *dummySynth) EnsureReady(context.Context) (bool, error) {
	return false, nil
}

func (s *dummySynth) AttackTone(uint8, uint8) (contracts.ToneHandle, error) {
	return 0, fmt.Errorf("winmm is not available on this platform")
}

func (s *dummySynth) ReleaseTone(contracts.ToneHandle) error {
	return nil
}

func (s *dummySynth) Devices() ([]contracts.DeviceInfo, error) {
	s.logger.Warn("Devices called on dummy winmm synthesizer")
	return nil, fmt.Errorf("winmm is not available on this platform")
}

func (s *dummySynth) Close() error {
	return nil
}
